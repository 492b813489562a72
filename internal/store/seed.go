package store

import (
	"fmt"

	"github.com/noah-isme/colegio-api/internal/models"
)

type seedUser struct {
	id, name, email, password string
	profile                   models.Profile
}

var seedSubjects = []models.Subject{
	{ID: "1", Name: "Matemáticas", Description: "Álgebra, geometría y cálculo"},
	{ID: "2", Name: "Ciencias", Description: "Física, química y biología"},
	{ID: "3", Name: "Historia", Description: "Historia mundial y local"},
	{ID: "4", Name: "Literatura", Description: "Comprensión y análisis de textos"},
	{ID: "5", Name: "Inglés", Description: "Idioma extranjero"},
}

var seedUsers = []seedUser{
	{"1", "Admin User", "admin@example.com", "admin123", models.AdminProfile{}},
	{"2", "Juan Pérez", "teacher1@example.com", "teacher123", models.TeacherProfile{SubjectIDs: []string{"1", "2"}}},
	{"3", "María López", "teacher2@example.com", "teacher123", models.TeacherProfile{SubjectIDs: []string{"3", "4"}}},
	{"4", "Carlos Rodríguez", "student1@example.com", "student123", models.StudentProfile{GradeLevel: "1°", Group: "1"}},
	{"5", "Ana Martínez", "student2@example.com", "student123", models.StudentProfile{GradeLevel: "1°", Group: "2"}},
	{"6", "Pedro Sánchez", "student3@example.com", "student123", models.StudentProfile{GradeLevel: "2°", Group: "1"}},
	{"7", "Laura Gómez", "student4@example.com", "student123", models.StudentProfile{GradeLevel: "2°", Group: "2"}},
}

var seedGrades = []models.Grade{
	{ID: "1", StudentID: "4", SubjectID: "1", TeacherID: "2", Value: 85, Period: models.PeriodFirst, Date: "2023-03-15"},
	{ID: "2", StudentID: "4", SubjectID: "2", TeacherID: "3", Value: 78, Period: models.PeriodFirst, Date: "2023-03-18"},
	{ID: "3", StudentID: "4", SubjectID: "3", TeacherID: "2", Value: 92, Period: models.PeriodFirst, Date: "2023-03-20"},
	{ID: "4", StudentID: "5", SubjectID: "1", TeacherID: "2", Value: 90, Period: models.PeriodFirst, Date: "2023-03-15"},
	{ID: "5", StudentID: "5", SubjectID: "2", TeacherID: "3", Value: 85, Period: models.PeriodFirst, Date: "2023-03-18"},
	{ID: "6", StudentID: "5", SubjectID: "3", TeacherID: "2", Value: 88, Period: models.PeriodFirst, Date: "2023-03-20"},
	{ID: "7", StudentID: "6", SubjectID: "1", TeacherID: "2", Value: 75, Period: models.PeriodFirst, Date: "2023-03-15"},
	{ID: "8", StudentID: "6", SubjectID: "2", TeacherID: "3", Value: 82, Period: models.PeriodFirst, Date: "2023-03-18"},
	{ID: "9", StudentID: "6", SubjectID: "3", TeacherID: "2", Value: 79, Period: models.PeriodFirst, Date: "2023-03-20"},
	{ID: "10", StudentID: "4", SubjectID: "1", TeacherID: "2", Value: 88, Period: models.PeriodSecond, Date: "2023-06-15"},
	{ID: "11", StudentID: "4", SubjectID: "2", TeacherID: "3", Value: 82, Period: models.PeriodSecond, Date: "2023-06-18"},
	{ID: "12", StudentID: "4", SubjectID: "3", TeacherID: "2", Value: 90, Period: models.PeriodSecond, Date: "2023-06-20"},
	{ID: "13", StudentID: "5", SubjectID: "1", TeacherID: "2", Value: 92, Period: models.PeriodSecond, Date: "2023-06-15"},
	{ID: "14", StudentID: "5", SubjectID: "2", TeacherID: "3", Value: 87, Period: models.PeriodSecond, Date: "2023-06-18"},
	{ID: "15", StudentID: "5", SubjectID: "3", TeacherID: "2", Value: 85, Period: models.PeriodSecond, Date: "2023-06-20"},
}

// seedSlot is grade, group, day, slot, subject, teacher.
type seedSlot struct {
	grade, group string
	day, slot    int
	subject      string
	teacher      string
}

var seedSchedule = []seedSlot{
	{"1°", "1", 1, 1, "1", "2"}, {"1°", "1", 1, 2, "2", "2"}, {"1°", "1", 1, 3, "3", "3"}, {"1°", "1", 2, 1, "4", "3"}, {"1°", "1", 2, 2, "5", "2"},
	{"1°", "2", 1, 1, "3", "3"}, {"1°", "2", 1, 2, "4", "3"}, {"1°", "2", 1, 3, "5", "2"}, {"1°", "2", 2, 1, "1", "2"}, {"1°", "2", 2, 2, "2", "2"},
	{"2°", "1", 1, 1, "5", "2"}, {"2°", "1", 1, 2, "1", "2"}, {"2°", "1", 1, 3, "2", "2"}, {"2°", "1", 2, 1, "3", "3"}, {"2°", "1", 2, 2, "4", "3"},
	{"2°", "2", 1, 1, "2", "2"}, {"2°", "2", 1, 2, "3", "3"}, {"2°", "2", 1, 3, "4", "3"}, {"2°", "2", 2, 1, "5", "2"}, {"2°", "2", 2, 2, "1", "2"},
}

var seedTopics = []models.CurriculumTopic{
	{
		ID:          "1",
		Titulo:      "Introducción al Álgebra",
		Descripcion: "Fundamentos básicos del álgebra y operaciones con variables",
		Objetivos:   "Comprender los conceptos básicos del álgebra y resolver ecuaciones simples",
		Contenido:   "Variables, expresiones algebraicas, ecuaciones lineales",
		Actividades: "Ejercicios prácticos, trabajo en grupo, resolución de problemas",
		Recursos:    "Libro de texto, material digital, videos explicativos",
		Evaluacion:  "Examen escrito, participación en clase, tareas",
		FechaInicio: "2025-05-01",
		FechaFin:    "2025-05-15",
		MateriaID:   "1",
		ProfesorID:  "2",
		Grado:       "1°",
		Grupo:       "1",
	},
	{
		ID:          "2",
		Titulo:      "La célula y sus funciones",
		Descripcion: "Estudio de la estructura y función celular",
		Objetivos:   "Identificar las partes de la célula y comprender sus funciones",
		Contenido:   "Estructura celular, organelos, funciones celulares",
		Actividades: "Observación al microscopio, dibujos, exposiciones",
		Recursos:    "Microscopios, láminas, modelos 3D",
		Evaluacion:  "Informe de laboratorio, examen teórico, maqueta",
		FechaInicio: "2025-05-01",
		FechaFin:    "2025-05-20",
		MateriaID:   "2",
		ProfesorID:  "2",
		Grado:       "1°",
		Grupo:       "1",
	},
	{
		ID:          "3",
		Titulo:      "Revolución Francesa",
		Descripcion: "Causas, desarrollo y consecuencias de la Revolución Francesa",
		Objetivos:   "Analizar el impacto histórico de la Revolución Francesa",
		Contenido:   "Antecedentes, etapas, personajes importantes, consecuencias",
		Actividades: "Lectura de documentos históricos, debate, línea de tiempo",
		Recursos:    "Documentales, textos históricos, mapas",
		Evaluacion:  "Ensayo, participación en debate, prueba escrita",
		FechaInicio: "2025-05-05",
		FechaFin:    "2025-05-25",
		MateriaID:   "3",
		ProfesorID:  "3",
		Grado:       "2°",
		Grupo:       "1",
	},
}

// Seed loads the demo school: five subjects, seven users, fifteen grades,
// twenty schedule entries and three curriculum topics. Records keep their
// original ids and every counter continues after them. Passwords are run
// through hasher before they are stored.
func (s *Store) Seed(hasher PasswordHasher) error {
	hashes := make(map[string]string)
	for _, u := range seedUsers {
		if _, ok := hashes[u.password]; ok {
			continue
		}
		h, err := hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		hashes[u.password] = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range seedSubjects {
		s.subjects.put(sub.ID, sub)
	}
	for _, u := range seedUsers {
		s.users.put(u.id, models.User{ID: u.id, Name: u.name, Email: u.email, PasswordHash: hashes[u.password], Profile: u.profile}.Clone())
	}
	for _, g := range seedGrades {
		s.grades.put(g.ID, g)
	}
	for i, sl := range seedSchedule {
		id := fmt.Sprint(i + 1)
		s.schedules.put(id, models.Schedule{
			ID:         id,
			GradeLevel: sl.grade,
			Group:      sl.group,
			DayOfWeek:  sl.day,
			TimeSlot:   sl.slot,
			SubjectID:  sl.subject,
			TeacherID:  sl.teacher,
		})
	}
	for _, t := range seedTopics {
		s.topics.put(t.ID, t)
	}
	return nil
}
