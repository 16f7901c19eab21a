package options

import (
	"strconv"
	"strings"
)

type OptionStruct struct {
	Key   string
	Value string
}

type Option func(*OptionStruct)

func Page(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "page"
		f.Value = strconv.Itoa(value)
	}
}

func PerPage(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "per_page"
		f.Value = strconv.Itoa(value)
	}
}

func Force(value bool) Option {
	return func(f *OptionStruct) {
		f.Key = "force"
		if value {
			f.Value = "true"
		} else {
			f.Value = "false"
		}
	}
}

func Search(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "search"
		f.Value = value
	}
}

func Status(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "status"
		f.Value = value
	}
}

func Type(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "type"
		f.Value = value
	}
}

func StockStatus(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "stock_status"
		f.Value = value
	}
}

// Category limits products to the given product_cat term ids.
func Category(ids ...int) Option {
	return func(f *OptionStruct) {
		f.Key = "category"
		f.Value = joinInts(ids)
	}
}

func Exclude(ids ...int) Option {
	return func(f *OptionStruct) {
		f.Key = "exclude"
		f.Value = joinInts(ids)
	}
}

func Include(ids ...int) Option {
	return func(f *OptionStruct) {
		f.Key = "include"
		f.Value = joinInts(ids)
	}
}

// Fields restricts the response body, e.g. Fields("id").
func Fields(names ...string) Option {
	return func(f *OptionStruct) {
		f.Key = "_fields"
		f.Value = strings.Join(names, ",")
	}
}

func joinInts(ids []int) string {
	s := make([]string, 0, len(ids))
	for _, id := range ids {
		s = append(s, strconv.Itoa(id))
	}
	return strings.Join(s, ",")
}
