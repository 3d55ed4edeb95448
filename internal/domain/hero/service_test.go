package hero_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
)

type images struct {
	uploads   int
	destroyed []string
}

func (i *images) Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error) {
	i.uploads++
	id := fmt.Sprintf("%s/banner-%d", folder, i.uploads)
	return &upload.Result{URL: "/uploads/" + id + ".jpg", PublicID: id}, nil
}

func (i *images) Destroy(ctx context.Context, publicID string) error {
	i.destroyed = append(i.destroyed, publicID)
	return nil
}

func setup(t *testing.T) (*hero.Service, *images) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	imgs := &images{}
	return hero.NewService(memory.NewStore().Heroes, imgs, logger), imgs
}

func banner() *hero.Image {
	return &hero.Image{File: strings.NewReader("jpg"), Filename: "banner.jpg"}
}

func TestCreateRequiresImage(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Create(context.Background(), hero.CreateInput{Title: "Sale"}, nil)
	assert.ErrorIs(t, err, hero.ErrImageRequired)
}

func TestActiveLimit(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	var last *hero.HeroImage
	for i := 0; i < hero.MaxActive; i++ {
		h, err := svc.Create(ctx, hero.CreateInput{Title: fmt.Sprintf("Banner %d", i), SortOrder: i}, banner())
		require.NoError(t, err)
		assert.True(t, h.IsActive)
		last = h
	}

	_, err := svc.Create(ctx, hero.CreateInput{Title: "One more"}, banner())
	assert.ErrorIs(t, err, hero.ErrActiveLimit)

	off, err := svc.ToggleActive(ctx, last.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	list, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Images, hero.MaxActive)
	assert.EqualValues(t, hero.MaxActive-1, list.ActiveCount)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, hero.MaxActive-1)

	_, err = svc.Create(ctx, hero.CreateInput{Title: "Fits now"}, banner())
	require.NoError(t, err)

	_, err = svc.ToggleActive(ctx, last.ID)
	assert.ErrorIs(t, err, hero.ErrActiveLimit)
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, imgs := setup(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, hero.CreateInput{Title: "Sale"}, banner())
	require.NoError(t, err)
	old := h.ImagePublicID

	title := "Winter Sale"
	updated, err := svc.Update(ctx, h.ID, hero.UpdateInput{Title: &title}, banner())
	require.NoError(t, err)

	assert.Equal(t, "Winter Sale", updated.Title)
	assert.NotEqual(t, old, updated.ImagePublicID)
	assert.Equal(t, []string{old}, imgs.destroyed)
}

func TestDelete(t *testing.T) {
	svc, imgs := setup(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, hero.CreateInput{Title: "Sale"}, banner())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, h.ID))
	assert.Equal(t, []string{h.ImagePublicID}, imgs.destroyed)
	assert.ErrorIs(t, svc.Delete(ctx, h.ID), hero.ErrNotFound)
}
