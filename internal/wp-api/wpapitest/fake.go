// Package wpapitest provides an in-memory wp_api.API for tests.
package wpapitest

import (
	"sort"

	"github.com/pkg/errors"

	wp_api "WooWithTypesense/internal/wp-api"
)

type Fake struct {
	Menus map[int]wp_api.Menu
	Items map[int][]wp_api.MenuItem
}

func New() *Fake {
	return &Fake{Menus: map[int]wp_api.Menu{}, Items: map[int][]wp_api.MenuItem{}}
}

// AddMenu stores a menu with items built from title/url pairs.
func (f *Fake) AddMenu(id int, name string, titleURL ...string) {
	f.Menus[id] = wp_api.Menu{ID: id, Name: name}
	for i := 0; i+1 < len(titleURL); i += 2 {
		item := wp_api.MenuItem{URL: titleURL[i+1], Menus: id}
		item.Title.Rendered = titleURL[i]
		f.Items[id] = append(f.Items[id], item)
	}
}

func (f *Fake) MenuList() ([]wp_api.Menu, error) {
	ids := make([]int, 0, len(f.Menus))
	for id := range f.Menus {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]wp_api.Menu, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.Menus[id])
	}
	return out, nil
}

func (f *Fake) MenuGet(ID int) (*wp_api.Menu, error) {
	m, ok := f.Menus[ID]
	if !ok {
		return nil, errors.Errorf("rest_term_invalid: menu %d", ID)
	}
	return &m, nil
}

func (f *Fake) MenuItems(menuID int) ([]wp_api.MenuItem, error) {
	return f.Items[menuID], nil
}
