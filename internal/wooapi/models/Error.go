package models

import "fmt"

type ErrorWoo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status     int                    `json:"status"`
		Params     map[string]interface{} `json:"params,omitempty"`
		ResourceId int                    `json:"resource_id,omitempty"`
	} `json:"data"`
}

func (e *ErrorWoo) Error() string {
	return fmt.Sprintf("code:%s; message:%s; status:%d; params:%v;",
		e.Code,
		e.Message,
		e.Data.Status,
		e.Data.Params,
	)
}

// NotFound reports the REST "invalid id" family of errors.
func (e *ErrorWoo) NotFound() bool {
	switch e.Code {
	case "woocommerce_rest_product_invalid_id", "woocommerce_rest_term_invalid", "rest_post_invalid_id":
		return true
	}
	return e.Data.Status == 404
}
