package utils

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Scope applies LIMIT/OFFSET to a gorm query.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}

// PageFromQuery reads page and page_size, clamping to sane bounds.
func PageFromQuery(c *fiber.Ctx) Page {
	number := c.QueryInt("page", 1)
	if number < 1 {
		number = 1
	}
	size := c.QueryInt("page_size", DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}
