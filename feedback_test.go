package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestCreateFeedback(t *testing.T) {
	app := newTestApp(t)

	buyer, buyerToken, _ := InitAccount(app, "buyer")

	var shop Shop
	app.DB.Take(&shop, "codename = ?", "seller_shop")

	delivered := seedOrder(app, buyer, shop.ID, StatusDelivered)
	pending := seedOrder(app, buyer, shop.ID, StatusPending)

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
				name:        "RatingOutOfRange",
				accessToken: &buyerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{"orderId": delivered.Codename, "rating": "6"},
		},
		{
			TestStruct: TestStruct{
				name:        "OrderNotFound",
				accessToken: &buyerToken,
				expected:    http.StatusNotFound,
			},
			form: map[string]string{"orderId": "ORD-0000000000", "rating": "4"},
		},
		{
			TestStruct: TestStruct{
				name:        "UndeliveredOrderRejected",
				accessToken: &buyerToken,
				expected:    http.StatusBadRequest,
			},
			form: map[string]string{"orderId": pending.Codename, "rating": "4"},
		},
		{
			TestStruct: TestStruct{
				name: "SuccessWithCensoredComment",
				response: jsonpath.Chain().
					Equal("rating", float64(4)).
					Equal("comment", "Sole came off, t**** quality"),
				accessToken: &buyerToken,
				expected:    http.StatusCreated,
			},
			form: map[string]string{
				"orderId": delivered.Codename,
				"rating":  "4",
				"comment": "Sole came off, trash quality",
			},
		},
		{
			TestStruct: TestStruct{
				name:        "OneFeedbackPerOrder",
				accessToken: &buyerToken,
				expected:    http.StatusConflict,
			},
			form: map[string]string{"orderId": delivered.Codename, "rating": "5"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			test := apitest.New(c.name).
				Handler(app.Router).
				Post("/feedbacks")

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

	t.Run("ShopFeedbackListed", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Get(fmt.Sprintf("/shop/%s/feedbacks", shop.Codename)).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Len("$", 1)).
			Assert(jsonpath.Equal("$[0].rating", float64(4))).
			End()
	})
}
