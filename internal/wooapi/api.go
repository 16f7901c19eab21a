package wooapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"WooWithTypesense/internal/wc-api-go/client"
	"WooWithTypesense/internal/wc-api-go/options"
	"WooWithTypesense/internal/wooapi/models"
	optionsWoo "WooWithTypesense/internal/wooapi/options"
	"WooWithTypesense/pkg/logging"
)

type WOOAPI interface {
	ProductGet(ID int) (*models.Product, error)
	ProductPage(opts ...optionsWoo.Option) (*ProductPage, error)
	ProductList(opts ...optionsWoo.Option) ([]*models.Product, error)
	ProductListAll(opts ...optionsWoo.Option) ([]*models.Product, error)
	ProductIDs(opts ...optionsWoo.Option) ([]int, error)
	ProductVariations(productID int) ([]*models.Variation, error)

	ProductCategoryListAll() ([]*models.Term, error)
	ProductTagListAll() ([]*models.Term, error)
	AttributeList() ([]*models.ProductAttribute, error)
	AttributeTermListAll(attributeID int) ([]*models.Term, error)

	SettingGet(group, id string) (*models.Setting, error)
}

// ProductPage is one page of /products plus the pagination headers.
type ProductPage struct {
	Products   []*models.Product
	Page       int
	Total      int
	TotalPages int
}

// HasNext reports whether another page exists after this one.
func (p *ProductPage) HasNext() bool {
	return p.Page < p.TotalPages
}

const perPageAll = 100

var wooapiGlobal *wooapi

type wooapi struct {
	api         client.Client
	rps         int
	mu          sync.Mutex
	requestTime time.Time
}

// NewAPI builds the shared client from store url and consumer credentials.
func NewAPI(URL, key, secret string, rps int, queryStringAuth bool) WOOAPI {
	c := client.NewClient(options.Basic{
		URL:    URL,
		Key:    key,
		Secret: secret,
		Options: options.Advanced{
			QueryStringAuth: queryStringAuth,
		},
	})
	wooapiGlobal = newAPI(c, rps)
	return wooapiGlobal
}

// NewAPIWithClient is NewAPI for an already wired wc-api-go client.
func NewAPIWithClient(c client.Client, rps int) WOOAPI {
	return newAPI(c, rps)
}

func newAPI(c client.Client, rps int) *wooapi {
	if rps <= 0 {
		rps = 5
	}
	return &wooapi{api: c, rps: rps}
}

func GetAPI() WOOAPI {
	return wooapiGlobal
}

// CheckRPS sleeps until a full 1/rps interval has passed since the previous call.
func (w *wooapi) CheckRPS() {
	logger := logging.GetLogger()

	w.mu.Lock()
	defer w.mu.Unlock()

	TimeNow := time.Now()
	TimeDiff := TimeNow.Sub(w.requestTime)
	TimeRPS := time.Second / time.Duration(w.rps)

	if TimeDiff <= TimeRPS {
		timeSleep := w.requestTime.Add(TimeRPS).Sub(TimeNow)
		logger.Debugf("Over RPS, timeSleep: %s", timeSleep)
		time.Sleep(timeSleep)
	}
	w.requestTime = time.Now()
}

// get performs a throttled GET and decodes a 200 body into out.
// Any other status is decoded into *models.ErrorWoo.
func (w *wooapi) get(endpoint string, params url.Values, out interface{}) (http.Header, error) {
	logger := logging.GetLogger()
	logger.Debugf("Endpoint: %s %v", endpoint, params)

	w.CheckRPS()

	r, err := w.api.Get(endpoint, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send request to Woo API, endpoint:%s", endpoint)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(r.Body)

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed io.ReadAll(r.Body), endpoint:%s", endpoint)
	}

	if r.StatusCode != http.StatusOK {
		logger.Debugf("status %d: %s", r.StatusCode, string(bodyBytes))
		var ErrorWoo models.ErrorWoo
		if err := json.Unmarshal(bodyBytes, &ErrorWoo); err != nil {
			return nil, errors.Errorf("unexpected status %d from Woo API, endpoint:%s", r.StatusCode, endpoint)
		}
		if ErrorWoo.Data.Status == 0 {
			ErrorWoo.Data.Status = r.StatusCode
		}
		return nil, &ErrorWoo
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return nil, errors.Wrapf(err, "failed json.Unmarshal(), endpoint:%s", endpoint)
	}
	return r.Header, nil
}

func buildParams(opts []optionsWoo.Option) url.Values {
	params := url.Values{}
	for _, field := range opts {
		Option := new(optionsWoo.OptionStruct)
		field(Option)
		params.Set(Option.Key, Option.Value)
	}
	return params
}

func headerInt(h http.Header, key string) int {
	i, _ := strconv.Atoi(h.Get(key))
	return i
}

func (w *wooapi) ProductGet(ID int) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductGet:>Start")
	defer logger.Debug("ProductGet:>End")

	if ID == 0 {
		return nil, errors.New("product ID is not set")
	}

	var product models.Product
	if _, err := w.get(fmt.Sprintf("products/%d", ID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (w *wooapi) ProductPage(opts ...optionsWoo.Option) (*ProductPage, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductPage:>Start")
	defer logger.Debug("ProductPage:>End")

	params := buildParams(opts)

	var products []*models.Product
	header, err := w.get("products", params, &products)
	if err != nil {
		return nil, err
	}

	page, _ := strconv.Atoi(params.Get("page"))
	if page == 0 {
		page = 1
	}
	logger.Debugf("X-WP-TotalPages: %s", header.Get("X-WP-TotalPages"))

	return &ProductPage{
		Products:   products,
		Page:       page,
		Total:      headerInt(header, "X-WP-Total"),
		TotalPages: headerInt(header, "X-WP-TotalPages"),
	}, nil
}

func (w *wooapi) ProductList(opts ...optionsWoo.Option) ([]*models.Product, error) {
	p, err := w.ProductPage(opts...)
	if err != nil {
		return nil, err
	}
	return p.Products, nil
}

func (w *wooapi) ProductListAll(opts ...optionsWoo.Option) ([]*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductListAll:>Start")
	defer logger.Debug("ProductListAll:>End")

	var products []*models.Product
	for i := 1; ; i++ {
		pageOpts := append(append([]optionsWoo.Option{}, opts...), optionsWoo.PerPage(perPageAll), optionsWoo.Page(i))
		productsTemp, err := w.ProductList(pageOpts...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed ProductList, PerPage:%d, Page:%d", perPageAll, i)
		}
		if len(productsTemp) == 0 {
			break
		}
		products = append(products, productsTemp...)
		logger.Debugf("Page load:%d", i)
		if len(productsTemp) < perPageAll {
			break
		}
	}

	return products, nil
}

func (w *wooapi) ProductIDs(opts ...optionsWoo.Option) ([]int, error) {
	params := buildParams(append(opts, optionsWoo.Fields("id")))

	var rows []struct {
		ID int `json:"id"`
	}
	if _, err := w.get("products", params, &rows); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (w *wooapi) ProductVariations(productID int) ([]*models.Variation, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductVariations:>Start")
	defer logger.Debug("ProductVariations:>End")

	var all []*models.Variation
	for i := 1; ; i++ {
		var variations []*models.Variation
		params := buildParams([]optionsWoo.Option{optionsWoo.PerPage(perPageAll), optionsWoo.Page(i)})
		if _, err := w.get(fmt.Sprintf("products/%d/variations", productID), params, &variations); err != nil {
			return nil, errors.Wrapf(err, "failed ProductVariations(%d), Page:%d", productID, i)
		}
		all = append(all, variations...)
		if len(variations) < perPageAll {
			break
		}
	}
	return all, nil
}

func (w *wooapi) termListAll(endpoint string) ([]*models.Term, error) {
	var all []*models.Term
	for i := 1; ; i++ {
		var terms []*models.Term
		params := buildParams([]optionsWoo.Option{optionsWoo.PerPage(perPageAll), optionsWoo.Page(i)})
		if _, err := w.get(endpoint, params, &terms); err != nil {
			return nil, errors.Wrapf(err, "failed termListAll(%s), Page:%d", endpoint, i)
		}
		all = append(all, terms...)
		if len(terms) < perPageAll {
			break
		}
	}
	return all, nil
}

func (w *wooapi) ProductCategoryListAll() ([]*models.Term, error) {
	return w.termListAll("products/categories")
}

func (w *wooapi) ProductTagListAll() ([]*models.Term, error) {
	return w.termListAll("products/tags")
}

func (w *wooapi) AttributeList() ([]*models.ProductAttribute, error) {
	var attributes []*models.ProductAttribute
	if _, err := w.get("products/attributes", nil, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (w *wooapi) AttributeTermListAll(attributeID int) ([]*models.Term, error) {
	return w.termListAll(fmt.Sprintf("products/attributes/%d/terms", attributeID))
}

func (w *wooapi) SettingGet(group, id string) (*models.Setting, error) {
	var setting models.Setting
	if _, err := w.get(fmt.Sprintf("settings/%s/%s", group, id), nil, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}
