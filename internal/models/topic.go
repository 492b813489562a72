package models

// CurriculumTopic is a planned unit of instruction ("parcelador" topic).
type CurriculumTopic struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Objetivos   string `json:"objetivos"`
	Contenido   string `json:"contenido"`
	Actividades string `json:"actividades"`
	Recursos    string `json:"recursos"`
	Evaluacion  string `json:"evaluacion"`
	FechaInicio string `json:"fechaInicio"`
	FechaFin    string `json:"fechaFin"`
	MateriaID   string `json:"materiaId"`
	ProfesorID  string `json:"profesorId"`
	Grado       string `json:"grado"`
	Grupo       string `json:"grupo"`
}

// TopicFilter narrows topic listings. Grado and Grupo match together when both are set.
type TopicFilter struct {
	ProfesorID string
	MateriaID  string
	Grado      string
	Grupo      string
}
