package wp_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

// API reads navigation menus from the WordPress REST API (WP 5.9+ menus endpoints).
type API interface {
	MenuList() ([]Menu, error)
	MenuGet(ID int) (*Menu, error)
	MenuItems(menuID int) ([]MenuItem, error)
}

type api struct {
	url      string
	user     string
	password string
	client   *resty.Client
}

func NewAPI(URL, user, password string) API {
	return &api{
		url:      strings.TrimRight(URL, "/"),
		user:     user,
		password: password,
		client:   resty.New().SetTimeout(30 * time.Second),
	}
}

type Menu struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type MenuItem struct {
	ID    int `json:"id"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	URL       string `json:"url"`
	Parent    int    `json:"parent"`
	MenuOrder int    `json:"menu_order"`
	Menus     int    `json:"menus"`
}

type mediaError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

func (a *api) do(path string, query map[string]string, out interface{}) (int, error) {
	req := a.client.R().SetQueryParams(query)
	if a.user != "" {
		req.SetBasicAuth(a.user, a.password)
	}

	resp, err := req.Get(a.url + "/wp-json/wp/v2/" + path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed GET %s", path)
	}
	content := resp.Body()

	switch resp.StatusCode() {
	case http.StatusOK:
		if err := json.Unmarshal(content, out); err != nil {
			return resp.StatusCode(), errors.Wrap(err, "failed json.Unmarshal")
		}
		return resp.StatusCode(), nil
	default:
		var message mediaError
		if err := json.Unmarshal(content, &message); err == nil && message.Code != "" {
			if message.Code == "rest_post_invalid_page_number" {
				return resp.StatusCode(), errInvalidPage
			}
			return resp.StatusCode(), errors.New(fmt.Sprintf("%s %s; error: %s", resp.Status(), path, message.Message))
		}
		return resp.StatusCode(), errors.New(fmt.Sprintf("failed to get %s. Status: %s", path, resp.Status()))
	}
}

var errInvalidPage = errors.New("rest_post_invalid_page_number")

func (a *api) MenuList() (result []Menu, err error) {
	logger := logging.GetLogger()
	logger.Debug("Start MenuList")
	defer logger.Debug("End MenuList")

	page := 0
ForBreak:
	for {
		page++
		var i []Menu
		_, err := a.do("menus", map[string]string{"per_page": "100", "page": strconv.Itoa(page)}, &i)
		switch {
		case err == errInvalidPage:
			break ForBreak
		case err != nil:
			return nil, err
		case len(i) == 0:
			break ForBreak
		}
		result = append(result, i...)
		if len(i) < 100 {
			break ForBreak
		}
	}

	return result, nil
}

func (a *api) MenuGet(ID int) (*Menu, error) {
	var m Menu
	if _, err := a.do(fmt.Sprintf("menus/%d", ID), nil, &m); err != nil {
		return nil, errors.Wrapf(err, "failed MenuGet(%d)", ID)
	}
	return &m, nil
}

func (a *api) MenuItems(menuID int) (result []MenuItem, err error) {
	logger := logging.GetLogger()
	logger.Debug("Start MenuItems")
	defer logger.Debug("End MenuItems")

	page := 0
ForBreak:
	for {
		page++
		var i []MenuItem
		_, err := a.do("menu-items", map[string]string{
			"menus":    strconv.Itoa(menuID),
			"per_page": "100",
			"page":     strconv.Itoa(page),
			"orderby":  "menu_order",
			"order":    "asc",
		}, &i)
		switch {
		case err == errInvalidPage:
			break ForBreak
		case err != nil:
			return nil, errors.Wrapf(err, "failed MenuItems(%d)", menuID)
		case len(i) == 0:
			break ForBreak
		}
		result = append(result, i...)
		if len(i) < 100 {
			break ForBreak
		}
	}

	return result, nil
}
