package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func activeLabels(items []RenderedItem) []string {
	var out []string
	for _, it := range items {
		if it.Active {
			out = append(out, it.Label)
		}
	}
	return out
}

func TestBuildActiveState(t *testing.T) {
	require.Equal(t, []string{"Home"}, activeLabels(Build("/")))
	require.Equal(t, []string{"Dresses"}, activeLabels(Build("/products?sort=name")))
	require.Equal(t, []string{"New Arrivals"}, activeLabels(Build("/products?filter=new")))
	require.Equal(t, []string{"Sale"}, activeLabels(Build("/products?filter=sale&size=M")))
	require.Empty(t, activeLabels(Build("/cart")))
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/product/3", "Floral Summer Midi Dress")
	require.Len(t, crumbs, 3)
	require.Equal(t, Crumb{Href: "/products", Label: "Dresses"}, crumbs[1])
	require.Equal(t, "Floral Summer Midi Dress", crumbs[2].Label)
	require.True(t, crumbs[2].Active)

	crumbs = Breadcrumbs("/cart", "")
	require.Len(t, crumbs, 2)
	require.Equal(t, "Shopping Cart", crumbs[1].Label)

	require.Len(t, Breadcrumbs("/", ""), 1)
}
