package store

import (
	"strings"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// TopicFields are the attributes of a new curriculum topic.
type TopicFields struct {
	Titulo      string
	Descripcion string
	Objetivos   string
	Contenido   string
	Actividades string
	Recursos    string
	Evaluacion  string
	FechaInicio string
	FechaFin    string
	MateriaID   string
	ProfesorID  string
	Grado       string
	Grupo       string
}

// TopicPatch replaces the non-nil fields of a topic.
type TopicPatch struct {
	Titulo      *string
	Descripcion *string
	Objetivos   *string
	Contenido   *string
	Actividades *string
	Recursos    *string
	Evaluacion  *string
	FechaInicio *string
	FechaFin    *string
	MateriaID   *string
	ProfesorID  *string
	Grado       *string
	Grupo       *string
}

// ListTopics returns topics matching the filter in insertion order.
func (s *Store) ListTopics(f models.TopicFilter) []models.CurriculumTopic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.topics, func(t models.CurriculumTopic) bool {
		return (f.ProfesorID == "" || t.ProfesorID == f.ProfesorID) &&
			(f.MateriaID == "" || t.MateriaID == f.MateriaID) &&
			(f.Grado == "" || t.Grado == f.Grado) &&
			(f.Grupo == "" || t.Grupo == f.Grupo)
	}, identity[models.CurriculumTopic])
}

// GetTopic returns the topic with id.
func (s *Store) GetTopic(id string) (models.CurriculumTopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics.get(id)
	if !ok {
		return models.CurriculumTopic{}, appErrors.NotFound("topic not found")
	}
	return t, nil
}

// CreateTopic appends a new topic. Only titulo, materiaId and profesorId are
// required; references are not checked.
func (s *Store) CreateTopic(fields TopicFields) (models.CurriculumTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.CurriculumTopic{
		Titulo:      strings.TrimSpace(fields.Titulo),
		Descripcion: fields.Descripcion,
		Objetivos:   fields.Objetivos,
		Contenido:   fields.Contenido,
		Actividades: fields.Actividades,
		Recursos:    fields.Recursos,
		Evaluacion:  fields.Evaluacion,
		FechaInicio: fields.FechaInicio,
		FechaFin:    fields.FechaFin,
		MateriaID:   fields.MateriaID,
		ProfesorID:  fields.ProfesorID,
		Grado:       fields.Grado,
		Grupo:       fields.Grupo,
	}
	if err := checkTopic(t); err != nil {
		return models.CurriculumTopic{}, err
	}
	t.ID = s.topics.nextID()
	s.topics.put(t.ID, t)
	return t, nil
}

// UpdateTopic merges patch into the topic with id.
func (s *Store) UpdateTopic(id string, patch TopicPatch) (models.CurriculumTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics.get(id)
	if !ok {
		return models.CurriculumTopic{}, appErrors.NotFound("topic not found")
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&t.Titulo, patch.Titulo)
	assign(&t.Descripcion, patch.Descripcion)
	assign(&t.Objetivos, patch.Objetivos)
	assign(&t.Contenido, patch.Contenido)
	assign(&t.Actividades, patch.Actividades)
	assign(&t.Recursos, patch.Recursos)
	assign(&t.Evaluacion, patch.Evaluacion)
	assign(&t.FechaInicio, patch.FechaInicio)
	assign(&t.FechaFin, patch.FechaFin)
	assign(&t.MateriaID, patch.MateriaID)
	assign(&t.ProfesorID, patch.ProfesorID)
	assign(&t.Grado, patch.Grado)
	assign(&t.Grupo, patch.Grupo)
	t.Titulo = strings.TrimSpace(t.Titulo)

	if err := checkTopic(t); err != nil {
		return models.CurriculumTopic{}, err
	}
	s.topics.put(id, t)
	return t, nil
}

// DeleteTopic removes the topic with id.
func (s *Store) DeleteTopic(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.topics.remove(id) {
		return appErrors.NotFound("topic not found")
	}
	return nil
}

func checkTopic(t models.CurriculumTopic) error {
	if t.Titulo == "" || t.MateriaID == "" || t.ProfesorID == "" {
		return appErrors.Validation("titulo, materiaId and profesorId are required")
	}
	if t.FechaInicio != "" {
		if err := checkDate(t.FechaInicio, "fechaInicio"); err != nil {
			return err
		}
	}
	if t.FechaFin != "" {
		if err := checkDate(t.FechaFin, "fechaFin"); err != nil {
			return err
		}
	}
	// YYYY-MM-DD compares chronologically as a string
	if t.FechaInicio != "" && t.FechaFin != "" && t.FechaFin < t.FechaInicio {
		return appErrors.Validation("fechaFin must not be before fechaInicio")
	}
	return nil
}
