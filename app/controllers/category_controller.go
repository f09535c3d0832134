package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{catalog: services.NewCatalogService(db)}
}

func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalog.Categories()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]resources.Map, 0, len(categories))
	for _, category := range categories {
		out = append(out, resources.Category(category, c.catalog.CategoryProductCount(category.ID)))
	}
	response.Success(w, out)
}

func (c *CategoryController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	category, err := c.catalog.Category(id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Category(category, c.catalog.CategoryProductCount(category.ID)))
}

func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !bindJSON(w, r, &in) {
		return
	}

	category, err := c.catalog.CreateCategory(in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Created(w, resources.Category(category, 0))
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	var in services.CategoryInput
	if !bindJSON(w, r, &in) {
		return
	}

	category, err := c.catalog.UpdateCategory(id, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Category(category, c.catalog.CategoryProductCount(category.ID)))
}

func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	if err := c.catalog.DeleteCategory(id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Map{"deleted": true})
}

// Products lists the active products belonging to one category.
func (c *CategoryController) Products(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	products, err := c.catalog.CategoryProducts(id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Products(products))
}
