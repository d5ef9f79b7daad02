package domain

import (
	"strings"
	"testing"

	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	valid := Product{Name: "Widget", Price: decimal.RequireFromString("9.99"), Status: StatusActive}

	testCases := []struct {
		Name    string
		Mutate  func(p *Product)
		WantErr bool
	}{
		{Name: "valid", Mutate: func(p *Product) {}},
		{Name: "name too short", Mutate: func(p *Product) { p.Name = "ab" }, WantErr: true},
		{Name: "name at lower bound", Mutate: func(p *Product) { p.Name = "abc" }},
		{Name: "name at upper bound", Mutate: func(p *Product) { p.Name = strings.Repeat("x", 500) }},
		{Name: "name too long", Mutate: func(p *Product) { p.Name = strings.Repeat("x", 501) }, WantErr: true},
		{Name: "multibyte name counted in runes", Mutate: func(p *Product) { p.Name = "äöü" }},
		{Name: "zero price", Mutate: func(p *Product) { p.Price = decimal.Zero }},
		{Name: "negative price", Mutate: func(p *Product) { p.Price = decimal.NewFromInt(-1) }, WantErr: true},
		{Name: "unknown status", Mutate: func(p *Product) { p.Status = "archived" }, WantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			p := valid
			tc.Mutate(&p)
			err := p.Validate()
			if tc.WantErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestImageValidate(t *testing.T) {
	assert.NoError(t, Image{URL: "http://x/1.jpg", Priority: 0, ProductID: 1}.Validate())
	assert.NoError(t, Image{URL: "http://x/1.jpg", Priority: 100, ProductID: 1}.Validate())

	err := Image{URL: "http://x/1.jpg", Priority: 150, ProductID: 1}.Validate()
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "priority")

	assert.ErrorIs(t, Image{URL: "  ", Priority: 10, ProductID: 1}.Validate(), errs.ErrValidation)
	assert.ErrorIs(t, Image{URL: "http://x/1.jpg", Priority: -1, ProductID: 1}.Validate(), errs.ErrValidation)
	assert.ErrorIs(t, Image{URL: "http://x/1.jpg", Priority: 10}.Validate(), errs.ErrValidation)
}

func TestParseStatusAndOrder(t *testing.T) {
	status, err := ParseProductStatus("ACTIVE")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, status)

	status, err = ParseProductStatus("inactive")
	assert.NoError(t, err)
	assert.Equal(t, StatusInactive, status)

	_, err = ParseProductStatus("gone")
	assert.ErrorIs(t, err, errs.ErrValidation)

	order, err := ParseSortOrder("")
	assert.NoError(t, err)
	assert.Equal(t, SortAsc, order)

	order, err = ParseSortOrder("DESC")
	assert.NoError(t, err)
	assert.Equal(t, SortDesc, order)

	_, err = ParseSortOrder("sideways")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
