package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
)

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts []*model.Contact
}

func (r *fakeContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *contact
	r.contacts = append(r.contacts, &cp)
	return nil
}

func TestContactCreate(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo)

	id, err := svc.Create(context.Background(), &ContactInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Company:   "Analytical Engines",
		JobTitle:  "Engineer",
		Message:   "hello",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	require.Len(t, repo.contacts, 1)
	c := repo.contacts[0]
	assert.Equal(t, "new", c.Status)
	require.NotNil(t, c.JobTitle)
	assert.Equal(t, "Engineer", *c.JobTitle)
	assert.Nil(t, c.Country)
}

func TestContactValidation(t *testing.T) {
	svc := NewContactService(&fakeContactRepo{})

	cases := []*ContactInput{
		{LastName: "L", Email: "a@b.c", Message: "m"},
		{FirstName: "A", Email: "a@b.c", Message: "m"},
		{FirstName: "A", LastName: "L", Message: "m"},
		{FirstName: "A", LastName: "L", Email: "a@b.c"},
	}
	for i, in := range cases {
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, apperr.ErrValidation, "case %d", i)
	}
}
