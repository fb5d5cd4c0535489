package main

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

type TestStruct struct {
	name        string
	body        map[string]interface{}
	response    *jsonpath.AssertionChain
	accessToken *string
	success     bool
	expected    int
}

func newTestApp(t *testing.T) *app {
	a := NewApp().InitDB(".env-test").InitRouter()
	seedTestAccounts(a)

	t.Cleanup(func() {
		a.CleanupAfterTest()
	})

	return a
}

// seedTestAccounts makes sure the fixed accounts the tests lean on exist.
// Seeding is idempotent so suites can run in any order.
func seedTestAccounts(a *app) {
	users := []struct {
		name string
		role string
	}{
		{"admin", RoleAdmin},
		{"seller", RoleShopOwner},
		{"seller2", RoleShopOwner},
		{"buyer", RoleCustomer},
		{"maker", RoleShoemaker},
	}

	for _, u := range users {
		var existing User
		if err := a.DB.Take(&existing, "name = ?", u.name).Error; err == nil {
			continue
		}

		salt := GenerateSalt()
		lat, lng := "14.6091", "121.0223"
		address := "test street 1"
		a.DB.Create(&User{
			Name:      u.name,
			Email:     u.name + "@test.local",
			Password:  GenerateSecurePassword("a", salt),
			Salt:      salt,
			Role:      u.role,
			Address:   &address,
			Latitude:  &lat,
			Longitude: &lng,
		})
	}

	// Seller owns one approved shop with usable coordinates
	var shop Shop
	if err := a.DB.Take(&shop, "codename = ?", "seller_shop").Error; err != nil {
		var seller User
		a.DB.Take(&seller, "name = ?", "seller")

		name := "seller shop"
		address := "test market 5"
		lat, lng := "14.5995", "120.9842"
		shop = Shop{
			Name:      &name,
			Codename:  "seller_shop",
			Address:   &address,
			Latitude:  &lat,
			Longitude: &lng,
			Status:    ShopApproved,
			UserID:    seller.ID,
		}
		a.DB.Create(&shop)

		codename := shop.Codename
		seller.ShopCodename = &codename
		a.DB.Save(&seller)
	}

	// Shoemaker works for the seller's shop
	var maker User
	a.DB.Take(&maker, "name = ?", "maker")
	if maker.ShopCodename == nil {
		codename := "seller_shop"
		maker.ShopCodename = &codename
		a.DB.Save(&maker)
	}
}

func InitAccount(a *app, name string) (user User, accessToken string, refreshToken string) {
	a.DB.Take(&user, "name = ?", name)

	w := httptest.NewRecorder()

	access, refresh := MakeTokens(w, user)
	return user, access, refresh
}

// CreateTempShoe stores a shoe with one variant and one size bucket under
// the seller shop, for cart and order tests.
func CreateTempShoe(a *app, name string, price int64, size string, quantity int) (Shoe, ShoeVariant, SizeStock) {
	var shop Shop
	a.DB.Take(&shop, "codename = ?", "seller_shop")

	brand := "testBrand"
	shoe := Shoe{
		Name:     &name,
		Codename: GenerateCodename(name, true),
		Brand:    &brand,
		Public:   true,
		ShopID:   shop.ID,
	}
	a.DB.Create(&shoe)

	variant := ShoeVariant{
		ShoeID: shoe.ID,
		Color:  "black",
		Price:  decimal.NewFromInt(price),
	}
	a.DB.Create(&variant)

	stock := SizeStock{
		VariantID: variant.ID,
		Size:      size,
		Quantity:  quantity,
	}
	a.DB.Create(&stock)

	return shoe, variant, stock
}

func (a *app) CleanupAfterTest() {
	a.DB.Unscoped().Delete(&SizeStock{}, "variant_id IN (?)",
		a.DB.Model(&ShoeVariant{}).Select("id").Where("shoe_id IN (?)",
			a.DB.Model(&Shoe{}).Select("id").Where("name LIKE ?", "test%")))
	a.DB.Unscoped().Delete(&ShoeVariant{}, "shoe_id IN (?)",
		a.DB.Model(&Shoe{}).Select("id").Where("name LIKE ?", "test%"))
	a.DB.Unscoped().Delete(&Shoe{}, "name LIKE ?", "test%")
	a.DB.Unscoped().Delete(&Shop{}, "name LIKE ?", "test%")

	testOrders := a.DB.Model(&Order{}).Select("id").Where("email LIKE ?", "%@test.local")
	a.DB.Unscoped().Delete(&FeedbackMedia{}, "feedback_id IN (?)",
		a.DB.Model(&Feedback{}).Select("id").Where("order_id IN (?)", testOrders))
	a.DB.Unscoped().Delete(&Feedback{}, "order_id IN (?)", testOrders)
	a.DB.Unscoped().Delete(&StatusUpdate{}, "order_id IN (?)", testOrders)
	a.DB.Unscoped().Delete(&Order{}, "email LIKE ?", "%@test.local")
	a.DB.Unscoped().Delete(&CartItem{})

	testDesigns := a.DB.Model(&DesignModel{}).Select("id").Where("name LIKE ?", "test%")
	testDesignOrders := a.DB.Model(&DesignOrder{}).Select("id").Where("model_id IN (?)", testDesigns)
	a.DB.Unscoped().Delete(&DesignSelection{}, "design_order_id IN (?)", testDesignOrders)
	a.DB.Unscoped().Delete(&DesignOrder{}, "model_id IN (?)", testDesigns)
	a.DB.Unscoped().Delete(&DesignOption{}, "model_id IN (?)", testDesigns)
	a.DB.Unscoped().Delete(&DesignModel{}, "name LIKE ?", "test%")

	a.DB.Unscoped().Delete(&User{}, "name LIKE ?", "test%")
	a.DB.Unscoped().Delete(&RefreshToken{})

	a.CloseDbTest()
}
