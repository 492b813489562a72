package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

func TestTopicServiceTeacherPlansAsSelf(t *testing.T) {
	svc := NewTopicService(seededStore(t), Dependencies{})
	ctx := context.Background()

	topic, err := svc.Create(ctx, mariaActor, TopicRequest{Titulo: "La independencia", MateriaID: "3", Grado: "2°", Grupo: "1"})
	require.NoError(t, err)
	assert.Equal(t, "3", topic.ProfesorID)

	_, err = svc.Create(ctx, mariaActor, TopicRequest{Titulo: "Otro", MateriaID: "3", ProfesorID: "2"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Create(ctx, adminActor, TopicRequest{Titulo: "Sin profesor", MateriaID: "3"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, adminActor, TopicRequest{Titulo: "Fechas", MateriaID: "3", ProfesorID: "3", FechaInicio: "1 de mayo"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTopicServiceOwnership(t *testing.T) {
	svc := NewTopicService(seededStore(t), Dependencies{})
	ctx := context.Background()

	// topic 1 belongs to Juan
	_, err := svc.Update(ctx, mariaActor, "1", UpdateTopicRequest{Titulo: ptr("Robado")})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, mariaActor, "1"), appErrors.ErrForbidden)

	_, err = svc.Update(ctx, juanActor, "1", UpdateTopicRequest{ProfesorID: ptr("3")})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	updated, err := svc.Update(ctx, juanActor, "1", UpdateTopicRequest{Recursos: ptr("Calculadora")})
	require.NoError(t, err)
	assert.Equal(t, "Calculadora", updated.Recursos)

	// admins may reassign
	moved, err := svc.Update(ctx, adminActor, "1", UpdateTopicRequest{ProfesorID: ptr("3")})
	require.NoError(t, err)
	assert.Equal(t, "3", moved.ProfesorID)

	require.NoError(t, svc.Delete(ctx, mariaActor, "1"))
	topics, err := svc.List(ctx, models.TopicFilter{})
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}
