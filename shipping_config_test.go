package main

import (
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestShippingConfig(t *testing.T) {
	app := newTestApp(t)

	_, adminToken, _ := InitAccount(app, "admin")
	_, buyerToken, _ := InitAccount(app, "buyer")

	t.Cleanup(func() {
		cfg := DefaultShippingConfig()
		app.DB.Save(&cfg)
	})

	t.Run("SeededWithDefaults", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Get("/shipping/config").
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Chain().
				Equal("baseFee", "50").
				Equal("maxDistanceKm", float64(100)).
				Equal("maxAdditionalShops", float64(2)).
				End()).
			End()
	})

	t.Run("OnlyAdminsEdit", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Put("/shipping/config").
			Cookie("Access-Token", buyerToken).
			JSON(`{"baseFee": "60"}`).
			Expect(t).
			Status(http.StatusUnauthorized).
			End()
	})

	t.Run("ZeroItemWeightRejected", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Put("/shipping/config").
			Cookie("Access-Token", adminToken).
			JSON(`{"baseFee": "50", "perKmRate": "2", "perKgRate": "10", "serviceFee": "20", "additionalShopFee": "30", "baseWeightKg": 0.5, "itemWeightKg": 0, "maxDistanceKm": 100, "maxAdditionalShops": 2}`).
			Expect(t).
			Status(http.StatusBadRequest).
			End()
	})

	t.Run("NegativeFeeRejected", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Put("/shipping/config").
			Cookie("Access-Token", adminToken).
			JSON(`{"baseFee": "-1", "perKmRate": "2", "perKgRate": "10", "serviceFee": "20", "additionalShopFee": "30", "baseWeightKg": 0.5, "itemWeightKg": 0.5, "maxDistanceKm": 100, "maxAdditionalShops": 2}`).
			Expect(t).
			Status(http.StatusBadRequest).
			End()
	})

	t.Run("AdminUpdatePersists", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Put("/shipping/config").
			Cookie("Access-Token", adminToken).
			JSON(`{"baseFee": "60", "perKmRate": "3", "perKgRate": "10", "serviceFee": "20", "additionalShopFee": "30", "baseWeightKg": 0.5, "itemWeightKg": 0.5, "maxDistanceKm": 150, "maxAdditionalShops": 3}`).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Equal("baseFee", "60")).
			End()

		apitest.New().
			Handler(app.Router).
			Get("/shipping/config").
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Chain().
				Equal("baseFee", "60").
				Equal("maxDistanceKm", float64(150)).
				End()).
			End()
	})
}

func TestShippingQuoteEndpoint(t *testing.T) {
	app := newTestApp(t)
	stubDistances(t, &stubDistance{distances: []float64{10}})

	_, buyerToken, _ := InitAccount(app, "buyer")

	var shop Shop
	app.DB.Take(&shop, "codename = ?", "seller_shop")

	t.Run("EmptyCartEstimatesToZero", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Post("/shipping/quote").
			Cookie("Access-Token", buyerToken).
			JSON(`{}`).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Chain().
				Equal("success", true).
				Equal("estimated", true).
				Equal("total", "0").
				End()).
			End()
	})

	t.Run("ExplicitItemsPriced", func(t *testing.T) {
		apitest.New().
			Handler(app.Router).
			Post("/shipping/quote").
			Cookie("Access-Token", buyerToken).
			JSON(`{"items": [{"shopId": "`+shop.ID+`", "quantity": 4}]}`).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Chain().
				Equal("success", true).
				Equal("total", "105").
				Equal("$.shops[0].fee", "105").
				End()).
			End()
	})
}
