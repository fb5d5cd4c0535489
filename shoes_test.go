package main

import (
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestAddShoe(t *testing.T) {
	app := newTestApp(t)

	_, sellerToken, _ := InitAccount(app, "seller")
	_, buyerToken, _ := InitAccount(app, "buyer")

	variants := `[{"color":"black","price":"120","sizes":[{"size":"42","quantity":5},{"size":"43","quantity":2}]}]`

	cases := []struct {
		TestStruct
		form map[string]string
	}{
		{
			TestStruct: TestStruct{
				name:     "UnauthorizedNoToken",
				expected: http.StatusUnauthorized,
			},
		},
		{
			TestStruct: TestStruct{
				name:        "UnauthorizedNotShopOwner",
				accessToken: &buyerToken,
				expected:    http.StatusUnauthorized,
			},
		},
		{
			TestStruct: TestStruct{
				name:        "NameRequired",
				accessToken: &sellerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{"variants": variants},
		},
		{
			TestStruct: TestStruct{
				name:        "VariantRequired",
				accessToken: &sellerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{"name": "testShoe"},
		},
		{
			TestStruct: TestStruct{
				name:        "NegativePriceRejected",
				accessToken: &sellerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{
				"name":     "testShoe",
				"variants": `[{"color":"black","price":"-5","sizes":[]}]`,
			},
		},
		{
			TestStruct: TestStruct{
				name:        "NegativeQuantityRejected",
				accessToken: &sellerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{
				"name":     "testShoe",
				"variants": `[{"color":"black","price":"120","sizes":[{"size":"42","quantity":-1}]}]`,
			},
		},
		{
			TestStruct: TestStruct{
				name: "SuccessAdd",
				response: jsonpath.Chain().
					Equal("name", "testShoe").
					Equal("$.variants[0].color", "black").
					Equal("$.variants[0].sizes[0].quantity", float64(5)),
				accessToken: &sellerToken,
				expected:    http.StatusCreated,
			},
			form: map[string]string{
				"name":     "testShoe",
				"brand":    "testBrand",
				"variants": variants,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			test := apitest.New(c.name).
				Handler(app.Router).
				Post("/shoes")

			for key, value := range c.form {
				test.FormData(key, value)
			}

			if c.accessToken != nil {
				test.Cookie("Access-Token", *c.accessToken)
			}

			response := test.Expect(t).Status(c.expected)

			if c.response != nil {
				response.Assert(c.response.End())
			}

			response.End()
		})
	}
}

func TestShoeVisibility(t *testing.T) {
	app := newTestApp(t)

	_, sellerToken, _ := InitAccount(app, "seller")

	shoe, _, _ := CreateTempShoe(app, "testHiddenShoe", 80, "41", 3)
	shoe.Public = false
	app.DB.Save(&shoe)

	t.Run("PrivateShoeHiddenFromPublic", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Get("/shoe/" + shoe.Codename).
			Expect(t).
			Status(http.StatusNotFound).
			End()
	})

	t.Run("PrivateShoeVisibleToOwner", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Get("/shoe/"+shoe.Codename).
			Cookie("Access-Token", sellerToken).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Equal("codename", shoe.Codename)).
			End()
	})
}
