package bundle

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/internal/wooapi/wooapitest"
)

func bundleProduct() *models.Product {
	return &models.Product{
		ID:                        200,
		Type:                      "bundle",
		BundleLayout:              "tabular",
		BundleAddToCartFormLocate: "default",
		BundleMinSize:             1,
		BundleMaxSize:             3,
		BundleEditableInCart:      true,
		MetaData: []models.MetaData{
			{Key: "_wc_pb_base_price", Value: "10"},
			{Key: "_wc_sw_max_price", Value: "30"},
		},
		BundledItems: []models.BundledItem{{
			BundledItemID:        9,
			ProductID:            100,
			StockStatus:          "instock",
			QuantityMin:          1,
			QuantityMax:          2,
			QuantityDefault:      1,
			Optional:             true,
			HideThumbnail:        true,
			Discount:             "15",
			SingleProductVisible: "hidden",
		}},
	}
}

func TestDataOnlyForBundles(t *testing.T) {
	e := New(wooapitest.New())

	doc := e.Data(map[string]interface{}{"id": "1"}, &models.Product{Type: "simple"})
	_, ok := doc["bundle"]
	assert.False(t, ok)

	doc = e.Data(map[string]interface{}{"id": "200"}, bundleProduct())
	data, ok := doc["bundle"].(*Data)
	require.True(t, ok)

	assert.Equal(t, Settings{Layout: "tabular", FormLocation: "default", MinBundleSize: 1, MaxBundleSize: 3, EditInCart: true}, data.Settings)
	assert.Equal(t, "10", data.MinPrice)
	assert.Equal(t, "30", data.MaxPrice)
	require.Len(t, data.Products, 1)

	item := data.Products[0]
	assert.Equal(t, ItemProduct{ID: 100, StockStatus: "instock", BundleID: 9}, item.Product)
	assert.True(t, item.Settings.HideThumbnail)
	assert.False(t, item.Settings.ProductVisible)
	assert.True(t, item.Settings.PriceVisible)
	assert.Equal(t, 2, item.Settings.MaxQuantity)
	assert.Equal(t, "15", item.Settings.DiscountPercent)
}

func TestFieldsAddsBundleObject(t *testing.T) {
	fields := New(wooapitest.New()).Fields(nil)
	require.Len(t, fields, 1)
	assert.Equal(t, "bundle", fields[0].Name)
	assert.Equal(t, "object", fields[0].Type)
	assert.True(t, *fields[0].Optional)
}

func TestCheckBundleData(t *testing.T) {
	woo := wooapitest.New()
	woo.Add(bundleProduct(), &models.Product{ID: 100, Type: "simple"})
	e := New(woo)

	status, body := e.CheckBundleData("200")
	assert.Equal(t, http.StatusCreated, status)
	assert.IsType(t, &Data{}, body)

	for _, id := range []string{"100", "999", "abc"} {
		status, body = e.CheckBundleData(id)
		assert.Equal(t, http.StatusBadRequest, status, id)
		assert.Equal(t, map[string]string{"error": "Product is not a bundle"}, body, id)
	}

	status, _ = e.CheckBundleData("")
	assert.Equal(t, http.StatusBadRequest, status)
}
