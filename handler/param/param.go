package param

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(decimal.Decimal{}, func(s string) reflect.Value {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(d)
	})
}

// Binding decode query parameters, then the json body if any
func Binding(r *http.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return err
	}

	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") && r.Header.Get("Content-Type") != "" {
		return nil
	}

	return json.NewDecoder(r.Body).Decode(v)
}
