package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

const maxMultipartMemory = 32 << 20

// MultipartProductInput records which product fields a console form carried, so
// an update only touches what was sent.
type MultipartProductInput struct {
	Title           string
	TitleSet        bool
	Description     string
	DescriptionSet  bool
	Category        string
	CategorySet     bool
	Brand           string
	BrandSet        bool
	Price           float64
	PriceSet        bool
	ComparePrice    float64
	ComparePriceSet bool
	Stock           int
	StockSet        bool
	Sizes           []string
	SizesSet        bool
	Image           *multipart.FileHeader
}

type MultipartVideoInput struct {
	Title          string
	TitleSet       bool
	Description    string
	DescriptionSet bool
	Product        string
	ProductSet     bool
	IsActive       bool
	IsActiveSet    bool
	File           *multipart.FileHeader
}

type uploadRule struct {
	field      string
	extensions map[string]string
	maxSize    int64
}

var (
	imageRule = uploadRule{
		field: "image",
		extensions: map[string]string{
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
			".webp": "image/webp",
		},
		maxSize: 5 << 20,
	}
	videoRule = uploadRule{
		field: "video",
		extensions: map[string]string{
			".mp4":  "video/mp4",
			".webm": "video/webm",
			".mov":  "video/quicktime",
		},
		maxSize: 200 << 20,
	}
)

func parseMultipartProductRequest(c *gin.Context) (MultipartProductInput, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return MultipartProductInput{}, err
	}

	input := MultipartProductInput{}

	if value, ok := c.GetPostForm("title"); ok {
		input.Title = strings.TrimSpace(value)
		input.TitleSet = true
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := c.GetPostForm("category"); ok {
		input.Category = strings.TrimSpace(value)
		input.CategorySet = true
	}
	if value, ok := c.GetPostForm("brand"); ok {
		input.Brand = strings.TrimSpace(value)
		input.BrandSet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return MultipartProductInput{}, fmt.Errorf("price: %w", err)
		}
		input.Price = parsed
		input.PriceSet = true
	}
	if value, ok := c.GetPostForm("comparePrice"); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return MultipartProductInput{}, fmt.Errorf("comparePrice: %w", err)
		}
		input.ComparePrice = parsed
		input.ComparePriceSet = true
	}
	if value, ok := c.GetPostForm("stock"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return MultipartProductInput{}, fmt.Errorf("stock: %w", err)
		}
		input.Stock = parsed
		input.StockSet = true
	}

	if sizes, ok := c.GetPostFormArray("sizes"); ok {
		input.Sizes = make([]string, 0, len(sizes))
		for _, size := range sizes {
			if trimmed := strings.TrimSpace(size); trimmed != "" {
				input.Sizes = append(input.Sizes, trimmed)
			}
		}
		input.SizesSet = true
	}

	file, err := optionalFile(c, imageRule)
	if err != nil {
		return MultipartProductInput{}, err
	}
	input.Image = file

	return input, nil
}

func parseMultipartVideoRequest(c *gin.Context) (MultipartVideoInput, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return MultipartVideoInput{}, err
	}

	input := MultipartVideoInput{}

	if value, ok := c.GetPostForm("title"); ok {
		input.Title = strings.TrimSpace(value)
		input.TitleSet = true
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := c.GetPostForm("product"); ok {
		input.Product = strings.TrimSpace(value)
		input.ProductSet = true
	}
	if value, ok := c.GetPostForm("isActive"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return MultipartVideoInput{}, fmt.Errorf("isActive: %w", err)
		}
		input.IsActive = parsed
		input.IsActiveSet = true
	}

	file, err := optionalFile(c, videoRule)
	if err != nil {
		return MultipartVideoInput{}, err
	}
	input.File = file

	return input, nil
}

// optionalFile returns the named part after checking its extension and size, or
// nil when the form has none.
func optionalFile(c *gin.Context, rule uploadRule) (*multipart.FileHeader, error) {
	file, err := c.FormFile(rule.field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return nil, fmt.Errorf("%s file extension is required", rule.field)
	}
	if _, ok := rule.extensions[extension]; !ok {
		return nil, fmt.Errorf("unsupported %s type: %s", rule.field, extension)
	}
	if file.Size > rule.maxSize {
		return nil, fmt.Errorf("%s file too large (max %dMB)", rule.field, rule.maxSize>>20)
	}
	return file, nil
}

// applyTo overlays the submitted fields onto base.
func (in MultipartProductInput) applyTo(base models.ProductForm) models.ProductForm {
	if in.TitleSet {
		base.Title = in.Title
	}
	if in.DescriptionSet {
		base.Description = in.Description
	}
	if in.CategorySet {
		base.Category = in.Category
	}
	if in.BrandSet {
		base.Brand = in.Brand
	}
	if in.PriceSet {
		base.Price = in.Price
	}
	if in.ComparePriceSet {
		comparePrice := in.ComparePrice
		base.ComparePrice = &comparePrice
	}
	if in.StockSet {
		base.Stock = in.Stock
	}
	if in.SizesSet {
		base.Sizes = in.Sizes
	}
	return base
}

func (in MultipartVideoInput) applyTo(base models.VideoForm) models.VideoForm {
	if in.TitleSet {
		base.Title = in.Title
	}
	if in.DescriptionSet {
		base.Description = in.Description
	}
	if in.ProductSet {
		base.Product = in.Product
	}
	if in.IsActiveSet {
		base.IsActive = in.IsActive
	}
	return base
}

// productFormOf is the editable part of a stored product.
func productFormOf(p models.Product) models.ProductForm {
	return models.ProductForm{
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		ComparePrice: p.ComparePrice,
		Category:     p.Category,
		Brand:        p.Brand,
		Sizes:        []string(p.Sizes),
		Stock:        p.Stock,
	}
}

func videoFormOf(v models.Video) models.VideoForm {
	return models.VideoForm{
		Title:       v.Title,
		Description: v.Description,
		Product:     v.Product,
		IsActive:    v.IsActive,
	}
}

// validateComparePrice rejects a compare-at price that would not show as a sale.
func validateComparePrice(form models.ProductForm) error {
	if form.ComparePrice == nil {
		return nil
	}
	if *form.ComparePrice <= form.Price {
		return &models.ValidationError{Details: []string{"comparePrice must be greater than price"}}
	}
	return nil
}

// openUpload opens fh as a request part. The caller closes the returned file.
func openUpload(fh *multipart.FileHeader, rule uploadRule) (*models.Upload, multipart.File, error) {
	if fh == nil {
		return nil, nil, nil
	}
	file, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = rule.extensions[strings.ToLower(filepath.Ext(fh.Filename))]
	}
	return &models.Upload{FileName: filepath.Base(fh.Filename), ContentType: contentType, Reader: file}, file, nil
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, route string, err error) {
	respondWithError(c, http.StatusBadRequest, route, err.Error())
}
