package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"

	"ecommerce-api/assets"
	"ecommerce-api/model"
	"ecommerce-api/service"
)

const maxUploadMemory = 10 << 20

// productForm holds the parsed multipart fields. Set reports which fields
// were present in the request.
type productForm struct {
	name, category string
	price          decimal.Decimal
	stock          int
	set            map[string]bool
}

func parseProductForm(r *http.Request) (productForm, error) {
	f := productForm{set: map[string]bool{}}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return f, errors.New("invalid form")
	}
	if v := r.FormValue("name"); v != "" {
		f.name, f.set["name"] = v, true
	}
	if v := r.FormValue("category"); v != "" {
		f.category, f.set["category"] = v, true
	}
	if v := r.FormValue("price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New("invalid price")
		}
		f.price, f.set["price"] = p, true
	}
	if v := r.FormValue("stock"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid stock")
		}
		f.stock, f.set["stock"] = s, true
	}
	return f, nil
}

// savePhoto stores the "photo" part, if any, under the upload dir.
func (h *Handler) savePhoto(r *http.Request) (string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["photo"]) == 0 {
		return "", nil
	}
	path, err := assets.SaveUpload(h.uploadDir, r.MultipartForm.File["photo"][0])
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save upload")
		return "", err
	}
	return path, nil
}

// NewProduct handles POST /api/v1/product/new (multipart)
func (h *Handler) NewProduct(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductForm(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	photo, err := h.savePhoto(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), service.ProductInput{
		Name:      f.name,
		Category:  f.category,
		Price:     f.price,
		Stock:     f.stock,
		PhotoPath: photo,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]interface{}{"message": "product created successfully", "product": p})
}

// UpdateProduct handles PUT /api/v1/product/{id} (multipart, partial)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductForm(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	photo, err := h.savePhoto(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	up := service.ProductUpdate{PhotoPath: photo}
	if f.set["name"] {
		up.Name = &f.name
	}
	if f.set["category"] {
		up.Category = &f.category
	}
	if f.set["price"] {
		up.Price = &f.price
	}
	if f.set["stock"] {
		up.Stock = &f.stock
	}

	p, err := h.svc.UpdateProduct(r.Context(), mux.Vars(r)["id"], up)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "product updated successfully", "product": p})
}

// DeleteProduct handles DELETE /api/v1/product/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"message": "product deleted successfully"})
}

// GetProduct handles GET /api/v1/product/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"product": p})
}

// LatestProducts handles GET /api/v1/product/latest
func (h *Handler) LatestProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.LatestProducts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"products": ps})
}

// Categories handles GET /api/v1/product/categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Categories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"categories": cs})
}

// AdminProducts handles GET /api/v1/product/admin-products
func (h *Handler) AdminProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.AdminProducts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"products": ps})
}

// SearchProducts handles GET /api/v1/product/all?search=&price=&category=&sort=&page=
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Page:     1,
	}
	if v := q.Get("price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid price")
			return
		}
		f.MaxPrice = p
	}
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			writeErr(w, http.StatusBadRequest, "invalid page")
			return
		}
		f.Page = p
	}

	res, err := h.svc.SearchProducts(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"products": res.Products, "totalPage": res.TotalPage})
}
