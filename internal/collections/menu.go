package collections

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/typesense"
	wp_api "WooWithTypesense/internal/wp-api"
	"WooWithTypesense/pkg/logging"
)

// MyAccountMenuID is the fixed id of the synthetic WooCommerce My Account menu.
const MyAccountMenuID = 12444

const (
	MenuUpdated = "updated"
	MenuCreated = "created"
	MenuError   = "error"
)

// MyAccountMenu describes the WooCommerce account endpoints exposed as a menu.
type MyAccountMenu struct {
	// PageURL is the absolute url of the my-account page.
	PageURL string
	// Endpoints are "endpoint:Label" pairs in display order.
	Endpoints []string
}

type MenuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Menu struct {
	*Base
	wp        wp_api.API
	myAccount MyAccountMenu
	now       func() time.Time
}

func NewMenu(client typesense.Client, storeID string, wp wp_api.API, myAccount MyAccountMenu) *Menu {
	return &Menu{
		Base:      NewBase(client, "menu", storeID),
		wp:        wp,
		myAccount: myAccount,
		now:       time.Now,
	}
}

func (m *Menu) schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Fields: []api.Field{
			field("name", "string"),
			field("Wp_Menu_Id", "int32"),
			field("items", "string"),
			field("updated_at", "int64"),
		},
		DefaultSortingField: pointer.String("Wp_Menu_Id"),
	}
}

func (m *Menu) document(id int, name string, items []MenuItem) map[string]interface{} {
	if items == nil {
		items = []MenuItem{}
	}
	b, _ := json.Marshal(items)
	return map[string]interface{}{
		"id":         strconv.Itoa(id),
		"name":       name,
		"Wp_Menu_Id": id,
		"items":      string(b),
		"updated_at": m.now().Unix(),
	}
}

func (m *Menu) items(menuID int) ([]MenuItem, error) {
	wpItems, err := m.wp.MenuItems(menuID)
	if err != nil {
		return nil, err
	}
	items := make([]MenuItem, 0, len(wpItems))
	for _, i := range wpItems {
		items = append(items, MenuItem{Title: i.Title.Rendered, URL: i.URL})
	}
	return items, nil
}

// MyAccountItems renders the account endpoints under the my-account page.
func (m *Menu) MyAccountItems() []MenuItem {
	base := strings.TrimRight(m.myAccount.PageURL, "/") + "/"
	items := make([]MenuItem, 0, len(m.myAccount.Endpoints))
	for _, e := range m.myAccount.Endpoints {
		endpoint, label := e, e
		if i := strings.Index(e, ":"); i >= 0 {
			endpoint, label = e[:i], e[i+1:]
		}
		items = append(items, MenuItem{Title: label, URL: base + endpoint + "/"})
	}
	return items
}

// IndexResult counts documents written by a full index run.
type IndexResult struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// IndexAll recreates the menu collection and indexes every navigation menu
// plus the My Account menu.
func (m *Menu) IndexAll(ctx context.Context) (*IndexResult, error) {
	logger := logging.GetLogger()
	logger.Info("Start Menu.IndexAll")
	defer logger.Info("End Menu.IndexAll")

	if err := m.Drop(ctx); err != nil {
		logger.Debugf("drop %s: %v", m.Name(), err)
	}
	if err := m.Create(ctx, m.schema()); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", m.Name())
	}

	menus, err := m.wp.MenuList()
	if err != nil {
		return nil, errors.Wrap(err, "failed MenuList")
	}

	result := &IndexResult{}
	for _, menu := range menus {
		items, err := m.items(menu.ID)
		if err != nil {
			logger.Errorf("failed MenuItems(%d): %v", menu.ID, err)
			result.Failed++
			continue
		}
		if _, err := m.CreateDocument(ctx, m.document(menu.ID, menu.Name, items)); err != nil {
			logger.Errorf("failed to index menu %d: %v", menu.ID, err)
			result.Failed++
			continue
		}
		result.Indexed++
	}

	if _, err := m.CreateDocument(ctx, m.document(MyAccountMenuID, "WooCommerce My Account", m.MyAccountItems())); err != nil {
		logger.Errorf("failed to index my account menu: %v", err)
		result.Failed++
	} else {
		result.Indexed++
	}

	logger.Infof("Menus indexed: %d, failed: %d", result.Indexed, result.Failed)
	return result, nil
}

// OnMenuUpdate rebuilds one menu document. A document missing from the
// collection is created instead of updated.
func (m *Menu) OnMenuUpdate(ctx context.Context, menuID int) (string, error) {
	logger := logging.GetLogger()
	logger.Infof("Start OnMenuUpdate(%d)", menuID)
	defer logger.Infof("End OnMenuUpdate(%d)", menuID)

	var document map[string]interface{}
	if menuID == MyAccountMenuID {
		document = m.document(MyAccountMenuID, "WooCommerce My Account", m.MyAccountItems())
	} else {
		menu, err := m.wp.MenuGet(menuID)
		if err != nil {
			return MenuError, errors.Wrapf(err, "failed MenuGet(%d)", menuID)
		}
		items, err := m.items(menuID)
		if err != nil {
			return MenuError, errors.Wrapf(err, "failed MenuItems(%d)", menuID)
		}
		document = m.document(menu.ID, menu.Name, items)
	}

	_, err := m.UpdateDocument(ctx, strconv.Itoa(menuID), document)
	switch {
	case err == nil:
		return MenuUpdated, nil
	case typesense.IsNotFound(err):
		if _, err := m.CreateDocument(ctx, document); err != nil {
			return MenuError, errors.Wrapf(err, "failed to create menu %d", menuID)
		}
		return MenuCreated, nil
	default:
		return MenuError, errors.Wrapf(err, "failed to update menu %d", menuID)
	}
}
