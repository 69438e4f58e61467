package catalog

import (
	"context"
	"testing"

	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storeMock struct{ mock.Mock }

func (m *storeMock) CountProducts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *storeMock) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	return &p, args.Error(0)
}

func TestProductsAreComplete(t *testing.T) {
	products := Products()
	require.Len(t, products, len(seedProducts))

	seen := map[string]bool{}
	for _, p := range products {
		require.NotEmpty(t, p.ID)
		require.True(t, models.IsCategory(p.Category), p.ID)
		require.Positive(t, p.PriceCents)
		require.Equal(t, "/assets/models/"+p.ID+".glb", p.ModelURL)
		seen[p.Category] = true
	}
	for _, c := range models.Categories {
		require.True(t, seen[c], "no seed product for %s", c)
	}
}

func TestSeedEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	m := &storeMock{}
	m.On("CountProducts", ctx).Return(0, nil)
	m.On("CreateProduct", ctx, mock.AnythingOfType("models.Product")).Return(nil)

	n, err := Seed(ctx, m)
	require.NoError(t, err)
	require.Equal(t, len(seedProducts), n)
	m.AssertNumberOfCalls(t, "CreateProduct", len(seedProducts))
}

func TestSeedSkipsPopulatedCatalog(t *testing.T) {
	ctx := context.Background()
	m := &storeMock{}
	m.On("CountProducts", ctx).Return(3, nil)

	n, err := Seed(ctx, m)
	require.NoError(t, err)
	require.Zero(t, n)
	m.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}
