package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var (
	errInvalidPagination = errors.New("page and limit must be positive integers")
	errInvalidPrice      = errors.New("minPrice and maxPrice must be non-negative numbers")
)

func parsePaginationParams(pageStr, limitStr string) (int, int, error) {
	page := 1
	limit := defaultPageLimit

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxPageLimit)
	}

	return page, limit, nil
}

func parsePrice(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0, errInvalidPrice
	}
	return parsed, nil
}

// parseProductQuery reads the catalog filters from the query string.
func parseProductQuery(c *gin.Context) (models.ProductQuery, error) {
	page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		return models.ProductQuery{}, err
	}
	minPrice, err := parsePrice(c.Query("minPrice"))
	if err != nil {
		return models.ProductQuery{}, err
	}
	maxPrice, err := parsePrice(c.Query("maxPrice"))
	if err != nil {
		return models.ProductQuery{}, err
	}
	if maxPrice > 0 && minPrice > maxPrice {
		return models.ProductQuery{}, errInvalidPrice
	}

	return models.ProductQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     strings.TrimSpace(c.Query("sort")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Page:     page,
		Limit:    limit,
	}, nil
}
