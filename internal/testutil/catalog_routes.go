package testutil

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func (b *Backend) listProducts(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	b.mu.Lock()
	defer b.mu.Unlock()
	list := []models.Product{}
	for _, p := range b.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		list = append(list, p)
	}

	switch b.shape {
	case ShapeArray:
		c.JSON(http.StatusOK, list)
	case ShapeProducts:
		c.JSON(http.StatusOK, gin.H{"products": list})
	case ShapeData:
		c.JSON(http.StatusOK, gin.H{"data": list})
	case ShapeEmpty:
		c.JSON(http.StatusOK, gin.H{"total": 0})
	default:
		c.JSON(http.StatusOK, gin.H{"cloths": list, "total": len(list)})
	}
}

func (b *Backend) categories(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := map[string]bool{}
	names := []string{}
	for _, p := range b.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			names = append(names, p.Category)
		}
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"categories": names})
}

func (b *Backend) searchProducts(c *gin.Context) {
	term := strings.ToLower(strings.TrimSpace(c.Query("q")))

	b.mu.Lock()
	defer b.mu.Unlock()
	list := []models.Product{}
	for _, p := range b.products {
		if term != "" && strings.Contains(strings.ToLower(p.Title), term) {
			list = append(list, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (b *Backend) getProduct(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.productLocked(c.Param("id"))
	if !ok {
		respond(c, http.StatusNotFound, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cloth": b.products[i]})
}

// recordUploadLocked parses the multipart body and keeps what it carried.
func (b *Backend) recordUploadLocked(c *gin.Context) (Upload, bool) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		respond(c, http.StatusBadRequest, "Expected multipart form data")
		return Upload{}, false
	}
	upload := Upload{Route: c.Request.Method + " " + c.FullPath(), Fields: map[string][]string{}, Files: map[string]string{}}
	for name, values := range c.Request.MultipartForm.Value {
		upload.Fields[name] = values
	}
	for name, files := range c.Request.MultipartForm.File {
		if len(files) > 0 {
			upload.Files[name] = files[0].Filename
		}
	}
	b.uploads = append(b.uploads, upload)
	return upload, true
}

func applyProductFields(p *models.Product, u Upload) error {
	if v, ok := first(u.Fields, "title"); ok {
		p.Title = v
	}
	if v, ok := first(u.Fields, "description"); ok {
		p.Description = v
	}
	if v, ok := first(u.Fields, "category"); ok {
		p.Category = v
	}
	if v, ok := first(u.Fields, "brand"); ok {
		p.Brand = v
	}
	if v, ok := first(u.Fields, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		p.Price = price
	}
	if v, ok := first(u.Fields, "comparePrice"); ok {
		compare, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		p.ComparePrice = &compare
	}
	if v, ok := first(u.Fields, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		p.Stock = stock
	}
	if sizes, ok := u.Fields["sizes"]; ok {
		p.Sizes = sizes
	}
	if name, ok := u.Files["image"]; ok {
		p.Images = models.StringList{"uploads/products/" + name}
	}
	return nil
}

func first(fields map[string][]string, name string) (string, bool) {
	values, ok := fields[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func (b *Backend) createProduct(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	upload, ok := b.recordUploadLocked(c)
	if !ok {
		return
	}
	p := models.Product{ID: b.nextID("p"), Images: models.StringList{}, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := applyProductFields(&p, upload); err != nil {
		respond(c, http.StatusBadRequest, "Invalid product fields")
		return
	}
	if p.Title == "" {
		respond(c, http.StatusBadRequest, "Title is required")
		return
	}
	b.products = append(b.products, p)
	c.JSON(http.StatusCreated, gin.H{"cloth": p})
}

// updateProduct changes only the fields present in the form.
func (b *Backend) updateProduct(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.productLocked(c.Param("id"))
	if !ok {
		respond(c, http.StatusNotFound, "Product not found")
		return
	}
	upload, ok := b.recordUploadLocked(c)
	if !ok {
		return
	}
	updated := b.products[i]
	if err := applyProductFields(&updated, upload); err != nil {
		respond(c, http.StatusBadRequest, "Invalid product fields")
		return
	}
	b.products[i] = updated
	c.JSON(http.StatusOK, gin.H{"cloth": updated})
}

func (b *Backend) deleteProduct(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.productLocked(c.Param("id"))
	if !ok {
		respond(c, http.StatusNotFound, "Product not found")
		return
	}
	b.products = append(b.products[:i], b.products[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (b *Backend) listReviews(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reviews := append([]models.Review{}, b.reviews[c.Param("id")]...)
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (b *Backend) addReview(c *gin.Context) {
	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil || review.Rating < 1 || review.Rating > 5 {
		respond(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	productID := c.Param("id")
	i, ok := b.productLocked(productID)
	if !ok {
		respond(c, http.StatusNotFound, "Product not found")
		return
	}
	review.ID = b.nextID("r")
	review.ProductID = productID
	review.UserName = b.accounts[currentUserID(c)].user.Name
	review.CreatedAt = time.Now().UTC().Truncate(time.Second)
	b.reviews[productID] = append(b.reviews[productID], review)

	p := &b.products[i]
	total := p.Rating*float64(p.ReviewCount) + float64(review.Rating)
	p.ReviewCount++
	p.Rating = total / float64(p.ReviewCount)
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
