package service

import (
	"context"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

type topicStore interface {
	ListTopics(filter models.TopicFilter) []models.CurriculumTopic
	GetTopic(id string) (models.CurriculumTopic, error)
	CreateTopic(fields store.TopicFields) (models.CurriculumTopic, error)
	UpdateTopic(id string, patch store.TopicPatch) (models.CurriculumTopic, error)
	DeleteTopic(id string) error
}

// TopicRequest is the payload of a curriculum topic.
type TopicRequest struct {
	Titulo      string `json:"titulo" validate:"required"`
	Descripcion string `json:"descripcion"`
	Objetivos   string `json:"objetivos"`
	Contenido   string `json:"contenido"`
	Actividades string `json:"actividades"`
	Recursos    string `json:"recursos"`
	Evaluacion  string `json:"evaluacion"`
	FechaInicio string `json:"fechaInicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `json:"fechaFin" validate:"omitempty,datetime=2006-01-02"`
	MateriaID   string `json:"materiaId" validate:"required"`
	ProfesorID  string `json:"profesorId"`
	Grado       string `json:"grado"`
	Grupo       string `json:"grupo"`
}

// UpdateTopicRequest changes the provided fields only.
type UpdateTopicRequest struct {
	Titulo      *string `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	Objetivos   *string `json:"objetivos"`
	Contenido   *string `json:"contenido"`
	Actividades *string `json:"actividades"`
	Recursos    *string `json:"recursos"`
	Evaluacion  *string `json:"evaluacion"`
	FechaInicio *string `json:"fechaInicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    *string `json:"fechaFin" validate:"omitempty,datetime=2006-01-02"`
	MateriaID   *string `json:"materiaId"`
	ProfesorID  *string `json:"profesorId"`
	Grado       *string `json:"grado"`
	Grupo       *string `json:"grupo"`
}

// TopicService manages the curriculum planner.
type TopicService struct {
	topics topicStore
	deps   Dependencies
}

// NewTopicService constructs the service.
func NewTopicService(topics topicStore, deps Dependencies) *TopicService {
	return &TopicService{topics: topics, deps: deps.withDefaults()}
}

func (s *TopicService) List(ctx context.Context, filter models.TopicFilter) ([]models.CurriculumTopic, error) {
	return s.topics.ListTopics(filter), nil
}

func (s *TopicService) Get(ctx context.Context, id string) (*models.CurriculumTopic, error) {
	topic, err := s.topics.GetTopic(id)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// Create plans a topic. Teachers plan as themselves.
func (s *TopicService) Create(ctx context.Context, actor Actor, req TopicRequest) (*models.CurriculumTopic, error) {
	if err := s.deps.validate(req, "invalid topic payload"); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeacher {
		if req.ProfesorID == "" {
			req.ProfesorID = actor.ID
		}
		if req.ProfesorID != actor.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers may only plan their own topics")
		}
	}

	topic, err := s.topics.CreateTopic(store.TopicFields{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Objetivos:   req.Objetivos,
		Contenido:   req.Contenido,
		Actividades: req.Actividades,
		Recursos:    req.Recursos,
		Evaluacion:  req.Evaluacion,
		FechaInicio: req.FechaInicio,
		FechaFin:    req.FechaFin,
		MateriaID:   req.MateriaID,
		ProfesorID:  req.ProfesorID,
		Grado:       req.Grado,
		Grupo:       req.Grupo,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("topic", "created", topic.ID)
	return &topic, nil
}

// Update edits a topic. Teachers may only edit their own and cannot hand
// them to someone else.
func (s *TopicService) Update(ctx context.Context, actor Actor, id string, req UpdateTopicRequest) (*models.CurriculumTopic, error) {
	if err := s.deps.validate(req, "invalid topic payload"); err != nil {
		return nil, err
	}
	if err := s.ownsTopic(actor, id); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeacher && req.ProfesorID != nil && *req.ProfesorID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers may only plan their own topics")
	}

	topic, err := s.topics.UpdateTopic(id, store.TopicPatch{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Objetivos:   req.Objetivos,
		Contenido:   req.Contenido,
		Actividades: req.Actividades,
		Recursos:    req.Recursos,
		Evaluacion:  req.Evaluacion,
		FechaInicio: req.FechaInicio,
		FechaFin:    req.FechaFin,
		MateriaID:   req.MateriaID,
		ProfesorID:  req.ProfesorID,
		Grado:       req.Grado,
		Grupo:       req.Grupo,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("topic", "updated", id)
	return &topic, nil
}

func (s *TopicService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.ownsTopic(actor, id); err != nil {
		return err
	}
	if err := s.topics.DeleteTopic(id); err != nil {
		return err
	}
	s.deps.mutated("topic", "deleted", id)
	return nil
}

func (s *TopicService) ownsTopic(actor Actor, id string) error {
	if actor.Role != models.RoleTeacher {
		return nil
	}
	topic, err := s.topics.GetTopic(id)
	if err != nil {
		return err
	}
	if topic.ProfesorID != actor.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "topic belongs to another teacher")
	}
	return nil
}
