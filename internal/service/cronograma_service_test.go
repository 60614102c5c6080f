package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/service/servicetest"
	"github.com/seshat-edu/seshat-backend/internal/schedule"
)

func TestCronogramaServiceMateriaLimit(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	svc := NewCronogramaService(store, &servicetest.Advisor{}, zerolog.Nop())
	ctx := context.Background()

	for _, nome := range []string{"Matemática", "Física", "Química"} {
		_, err := svc.AddMateria(ctx, 1, nome)
		require.NoError(t, err)
	}

	_, err := svc.AddMateria(ctx, 1, "Biologia")
	assert.ErrorIs(t, err, ErrLimitReached)

	c, err := svc.GetMine(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, c.Materias, 3)
}

func TestCronogramaServiceTopicoRules(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	svc := NewCronogramaService(store, &servicetest.Advisor{}, zerolog.Nop())
	ctx := context.Background()

	m, err := svc.AddMateria(ctx, 1, "Matemática")
	require.NoError(t, err)

	for _, nome := range []string{"Álgebra", "Geometria", "Funções"} {
		_, err := svc.AddTopico(ctx, 1, m.ID, nome)
		require.NoError(t, err)
	}

	_, err = svc.AddTopico(ctx, 1, m.ID, "Trigonometria")
	assert.ErrorIs(t, err, ErrLimitReached)

	_, err = svc.AddTopico(ctx, 2, m.ID, "Intruso")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddTopico(ctx, 1, 999, "Fantasma")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCronogramaServiceWeekly(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	svc := NewCronogramaService(store, &servicetest.Advisor{}, zerolog.Nop())
	ctx := context.Background()

	week, err := svc.Weekly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusNoSubjects, week.Status)
	assert.Nil(t, week.Semana)

	math, _ := svc.AddMateria(ctx, 1, "Math")
	physics, _ := svc.AddMateria(ctx, 1, "Physics")
	var ids []int
	for _, nome := range []string{"A", "B", "C"} {
		tp, err := svc.AddTopico(ctx, 1, math.ID, nome)
		require.NoError(t, err)
		ids = append(ids, tp.ID)
	}
	d, err := svc.AddTopico(ctx, 1, physics.ID, "D")
	require.NoError(t, err)

	week, err = svc.Weekly(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, schedule.StatusOK, week.Status)
	assert.Equal(t, "A", week.Semana["Segunda-feira"])
	assert.Equal(t, "D", week.Semana["Terça-feira"])
	assert.Equal(t, "B", week.Semana["Quarta-feira"])
	assert.Equal(t, "C", week.Semana["Quinta-feira"])
	assert.Equal(t, schedule.Rest, week.Semana["Sexta-feira"])
	assert.Equal(t, schedule.Weekdays[:], week.Ordem)

	_, err = svc.SetTopicoConcluido(ctx, 1, ids[0], true)
	require.NoError(t, err)
	week, err = svc.Weekly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", week.Semana["Segunda-feira"])

	for _, id := range append(ids, d.ID) {
		_, err := svc.SetTopicoConcluido(ctx, 1, id, true)
		require.NoError(t, err)
	}
	week, err = svc.Weekly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusAllComplete, week.Status)
}

func TestCronogramaServiceDeleteOwnership(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	svc := NewCronogramaService(store, &servicetest.Advisor{}, zerolog.Nop())
	ctx := context.Background()

	m, _ := svc.AddMateria(ctx, 1, "Redação")
	tp, _ := svc.AddTopico(ctx, 1, m.ID, "Coesão")

	assert.ErrorIs(t, svc.DeleteTopico(ctx, 2, tp.ID), ErrForbidden)
	assert.NoError(t, svc.DeleteTopico(ctx, 1, tp.ID))
	assert.ErrorIs(t, svc.DeleteTopico(ctx, 1, tp.ID), ErrNotFound)

	assert.ErrorIs(t, svc.DeleteMateria(ctx, 2, m.ID), ErrForbidden)
	assert.NoError(t, svc.DeleteMateria(ctx, 1, m.ID))
	assert.ErrorIs(t, svc.DeleteMateria(ctx, 1, m.ID), ErrNotFound)
}

func TestCronogramaServiceGenerate(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	advisor := &servicetest.Advisor{Plan: &model.GeneratedPlan{
		NomePlano: "Reta Final",
		Materias: []model.GeneratedMateria{
			{Nome: "Matemática", Topicos: []string{"a", "b", "c", "d"}},
			{Nome: "Física", Topicos: []string{"e"}},
			{Nome: "Química"},
			{Nome: "Biologia"},
		},
	}}
	svc := NewCronogramaService(store, advisor, zerolog.Nop())
	ctx := context.Background()

	res, err := svc.Generate(ctx, 1, &model.GeneratePlanRequest{Meses: 3, AreasFoco: []string{"exatas"}})
	require.NoError(t, err)
	assert.True(t, res.Gerado)
	assert.Equal(t, "Reta Final", res.Cronograma.Nome)
	require.Len(t, res.Cronograma.Materias, 3)
	assert.Len(t, res.Cronograma.Materias[0].Topicos, 3)
}

func TestCronogramaServiceGenerateDegrades(t *testing.T) {
	store := servicetest.NewCronogramaStore()
	svc := NewCronogramaService(store, &servicetest.Advisor{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.AddMateria(ctx, 1, "História")
	require.NoError(t, err)

	res, err := svc.Generate(ctx, 1, &model.GeneratePlanRequest{Meses: 3, AreasFoco: []string{"humanas"}})
	require.NoError(t, err)
	assert.False(t, res.Gerado)
	assert.Len(t, res.Cronograma.Materias, 1)
	assert.Zero(t, store.Replaced)
}
