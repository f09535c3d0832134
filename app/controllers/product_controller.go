package controllers

import (
	"io"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

// maxImageBytes caps product image uploads at 5 MB.
const maxImageBytes = 5 << 20

// Listing page window bounds.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{catalog: services.NewCatalogService(db)}
}

// Index lists active products, optionally filtered with ?category={id}.
// The listing is windowed with ?page= and ?per_page=; absent or garbage
// paging parameters fall back to the defaults.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	var categoryID uint
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "category must be a numeric id")
			return
		}
		categoryID = uint(id)
	}

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", defaultPerPage)
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	products, total, err := c.catalog.ProductsPage(categoryID, page, perPage)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Paginated(w, resources.Products(products), response.Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}

func (c *ProductController) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Featured()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Products(products))
}

// Search matches ?q= against product names and descriptions.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Search(r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Products(products))
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	product, err := c.catalog.Product(id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Product(product))
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !bindJSON(w, r, &in) {
		return
	}

	product, err := c.catalog.CreateProduct(in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Created(w, resources.Product(product))
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	var in services.ProductInput
	if !bindJSON(w, r, &in) {
		return
	}

	product, err := c.catalog.UpdateProduct(id, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Product(product))
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	if err := c.catalog.DeleteProduct(id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Map{"deleted": true})
}

// UploadImage accepts a multipart form with an "image" file part and stores
// it on the configured disk.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read image")
		return
	}

	product, err := c.catalog.AttachImage(id, header.Filename, content)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Product(product))
}
