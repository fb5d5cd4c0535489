package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
)

func TestRegister(t *testing.T) {
	app := newTestApp(t)

	t.Cleanup(func() {
		// delete users whose names include "test"
		app.DB.Unscoped().Delete(&User{}, "name LIKE ?", "test%")
	})

	cases := []TestStruct{
		{
			name:     "PasswordsDontMatch",
			body:     map[string]interface{}{"name": "testUser1", "email": "testUser1@email.com", "password": "password123", "repeatPassword": "123password"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "InvalidEmail",
			body:     map[string]interface{}{"name": "testUser2", "email": "testUser2", "password": "password123", "repeatPassword": "password123"},
			expected: http.StatusNotAcceptable,
		},
		{
			name:     "AdminRoleNotRegisterable",
			body:     map[string]interface{}{"name": "testUser4", "email": "testUser4@email.com", "password": "password123", "repeatPassword": "password123", "role": "admin"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "EmailTaken",
			body:     map[string]interface{}{"name": "testUser5", "email": "buyer@test.local", "password": "password123", "repeatPassword": "password123"},
			expected: http.StatusNotAcceptable,
		},
		{
			name:     "RegistrationSuccessfull",
			body:     map[string]interface{}{"name": "testUser3", "email": "testUser3@email.com", "password": "password123", "repeatPassword": "password123", "role": "shopowner"},
			success:  true,
			expected: http.StatusCreated,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body, _ := json.Marshal(c.body)

			test := apitest.New(c.name).
				Handler(app.Router).
				Post("/register").JSON(body).
				Expect(t).
				Status(c.expected)

			if c.success {
				test.CookiePresent("Access-Token")
				test.CookiePresent("Refresh-Token")
			} else {
				test.CookieNotPresent("Access-Token")
				test.CookieNotPresent("Refresh-Token")
			}

			test.End()
		})
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	cases := []TestStruct{
		{
			name:     "AccountDoesntExist",
			body:     map[string]interface{}{"email": "nosuchuser@test.local", "password": "password123"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "WrongPassword",
			body:     map[string]interface{}{"email": "buyer@test.local", "password": "wrong"},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "AccountExistsGetToken",
			body:     map[string]interface{}{"email": "admin@test.local", "password": "a"},
			success:  true,
			expected: http.StatusAccepted,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body, _ := json.Marshal(c.body)

			test := apitest.New(c.name).
				Handler(app.Router).
				Post("/login").JSON(body).
				Expect(t).
				Status(c.expected)

			if c.success {
				test.CookiePresent("Access-Token")
				test.CookiePresent("Refresh-Token")
			} else {
				test.CookieNotPresent("Access-Token")
				test.CookieNotPresent("Refresh-Token")
			}

			test.End()
		})
	}
}
