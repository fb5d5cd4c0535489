package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

func NameTaken(name string, model interface{}) (err error) {
	if db.Find(model, "name = ?", name).RowsAffected > 0 {
		return errors.New("name taken")
	}

	return nil
}

func GetClaim(name string, r *http.Request) *string {
	claims, ok := r.Context().Value(ctxKey{}).(jwt.MapClaims)
	if !ok {
		return nil
	}

	value, ok := claims[name]
	if !ok {
		return nil
	}

	claim := fmt.Sprintf("%v", value)
	return &claim
}

func GetSingleParameter(r *http.Request, key string) string {
	value := r.Form[key]

	if len(value) > 0 {
		return value[0]
	}

	return ""
}

// ParsePagination reads ?page= and ?limit= with sane bounds.
func ParsePagination(r *http.Request) (offset int, limit int) {
	page, _ := strconv.Atoi(r.FormValue("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(r.FormValue("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return (page - 1) * limit, limit
}

// FileUpload stores the uploaded form file under dir following namePattern
// and returns its path, or "" when no file was sent.
func FileUpload(r *http.Request, formFile string, dir string, namePattern string) string {
	file, header, err := r.FormFile(formFile)
	if err != nil {
		return ""
	}
	defer file.Close()

	return saveUpload(file, header.Filename, dir, namePattern)
}

// FileUploadAll stores every file sent under the given form key, for
// multi-attachment uploads like feedback photos.
func FileUploadAll(r *http.Request, formFile string, dir string, namePattern string) []string {
	if r.MultipartForm == nil {
		return nil
	}

	var paths []string
	for _, header := range r.MultipartForm.File[formFile] {
		file, err := header.Open()
		if err != nil {
			continue
		}

		if path := saveUpload(file, header.Filename, dir, namePattern); path != "" {
			paths = append(paths, path)
		}
		file.Close()
	}

	return paths
}

func saveUpload(file io.Reader, filename string, dir string, namePattern string) string {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}

	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp(dir, namePattern+"*"+ext)
	if err != nil {
		return ""
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		return ""
	}

	return tempFile.Name()
}

// GenerateCodename turns a display name into a url-safe identifier. Unique
// codenames get a random suffix so edits never collide with older versions.
func GenerateCodename(name string, unique bool) string {
	codename := strings.ToLower(strings.TrimSpace(name))
	codename = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, codename)

	if unique {
		id, _ := uuid.NewRandom()
		codename = codename + "_" + id.String()[:8]
	}

	return codename
}

func GenerateOrderIdentifier() string {
	id, _ := uuid.NewRandom()
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}
