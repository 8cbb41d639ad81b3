// Package services is the domain service layer: one service per resource
// family, translating typed calls into REST requests and unwrapping the
// backend envelope. Pagination is 1-based at this boundary and 0-based on
// the wire; the translation is symmetric in both directions.
package services

import (
	"strconv"

	"straycare/internal/types"
)

// wirePage is the backend's page layout (Spring-style, 0-based "number").
type wirePage[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// toWirePage converts a 1-based caller page to the backend's 0-based form.
// Pages below 1 clamp to the first page.
func toWirePage(page int) int {
	if page < 1 {
		page = 1
	}
	return page - 1
}

// fromWirePage converts a 0-based backend page number back to 1-based.
func fromWirePage(number int) int {
	if number < 0 {
		number = 0
	}
	return number + 1
}

func (w wirePage[T]) toPage(fallbackSize int) *types.Page[T] {
	content := w.Content
	if content == nil {
		content = []T{}
	}
	size := w.Size
	if size == 0 {
		size = fallbackSize
	}
	totalPages := w.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	return &types.Page[T]{
		Content:       content,
		TotalElements: w.TotalElements,
		TotalPages:    totalPages,
		Size:          size,
		Page:          fromWirePage(w.Number),
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
