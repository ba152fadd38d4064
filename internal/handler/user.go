package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/model"
    "github.com/iliyamo/doulacare/internal/repository"
)

// UserHandler serves user management, bootstrap on sign-in and the doula
// directory.
type UserHandler struct {
    Users *repository.UserRepo
}

// NewUserHandler constructs a UserHandler and panics if repo is nil.
func NewUserHandler(users *repository.UserRepo) *UserHandler {
    if users == nil {
        panic("nil repository passed to NewUserHandler")
    }
    return &UserHandler{Users: users}
}

// userInput is the writable part of a user.  Nil fields were not sent.
type userInput struct {
    AuthID          *uuid.UUID `json:"auth_id"`
    Name            *string    `json:"name"`
    Location        *string    `json:"location"`
    Price           *float64   `json:"price"`
    Verified        *bool      `json:"verified"`
    Email           *string    `json:"email"`
    Role            *string    `json:"role"`
    Qualifications  *string    `json:"qualifications"`
    Services        *string    `json:"services"`
    IntroVideoURL   *string    `json:"intro_video_url"`
    PriceBundle     *float64   `json:"price_bundle"`
    YearsExperience *int       `json:"years_experience"`
    PhotoURL        *string    `json:"photo_url"`
    CertificateURL  *string    `json:"certificate_url"`
    PriceCaption    *string    `json:"price_caption"`
    BundleCaption   *string    `json:"bundle_caption"`
}

func validRole(r string) bool {
    return r == model.RoleMother || r == model.RoleDoula || r == model.RoleAdmin
}

// columns lists the supplied fields by column name for a partial update.
func (in userInput) columns() map[string]any {
    out := map[string]any{}
    set := func(col string, ok bool, v any) {
        if ok {
            out[col] = v
        }
    }
    set("auth_id", in.AuthID != nil, in.AuthID)
    if in.Name != nil {
        out["name"] = *in.Name
    }
    set("location", in.Location != nil, in.Location)
    if in.Price != nil {
        out["price"] = *in.Price
    }
    if in.Verified != nil {
        out["verified"] = *in.Verified
    }
    set("email", in.Email != nil, in.Email)
    if in.Role != nil {
        out["role"] = *in.Role
    }
    set("qualifications", in.Qualifications != nil, in.Qualifications)
    set("services", in.Services != nil, in.Services)
    set("intro_video_url", in.IntroVideoURL != nil, in.IntroVideoURL)
    set("price_bundle", in.PriceBundle != nil, in.PriceBundle)
    set("years_experience", in.YearsExperience != nil, in.YearsExperience)
    set("photo_url", in.PhotoURL != nil, in.PhotoURL)
    set("certificate_url", in.CertificateURL != nil, in.CertificateURL)
    set("price_caption", in.PriceCaption != nil, in.PriceCaption)
    set("bundle_caption", in.BundleCaption != nil, in.BundleCaption)
    return out
}

// toModel builds a new user from the input; role defaults to doula.
func (in userInput) toModel() model.User {
    u := model.User{
        AuthID:          in.AuthID,
        Location:        in.Location,
        Email:           in.Email,
        Role:            model.RoleDoula,
        Qualifications:  in.Qualifications,
        Services:        in.Services,
        IntroVideoURL:   in.IntroVideoURL,
        PriceBundle:     in.PriceBundle,
        YearsExperience: in.YearsExperience,
        PhotoURL:        in.PhotoURL,
        CertificateURL:  in.CertificateURL,
        PriceCaption:    in.PriceCaption,
        BundleCaption:   in.BundleCaption,
    }
    if in.Name != nil {
        u.Name = strings.TrimSpace(*in.Name)
    }
    if in.Price != nil {
        u.Price = *in.Price
    }
    if in.Verified != nil {
        u.Verified = *in.Verified
    }
    if in.Role != nil {
        u.Role = *in.Role
    }
    return u
}

// Create handles POST /users.
func (h *UserHandler) Create(c echo.Context) error {
    var in userInput
    if err := c.Bind(&in); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    u := in.toModel()
    if u.Name == "" {
        return errJSON(c, http.StatusBadRequest, "name is required")
    }
    if !validRole(u.Role) {
        return errJSON(c, http.StatusBadRequest, "role must be mother, doula or admin")
    }
    if err := h.Users.Create(c.Request().Context(), &u); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return errJSON(c, http.StatusConflict, "auth_id already registered")
        }
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// List handles GET /users.
func (h *UserHandler) List(c echo.Context) error {
    users, err := h.Users.List(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, users)
}

// Update handles PUT /users/:id and applies only the fields present in
// the body.
func (h *UserHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid user id")
    }
    var in userInput
    if err := c.Bind(&in); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    if in.Role != nil && !validRole(*in.Role) {
        return errJSON(c, http.StatusBadRequest, "role must be mother, doula or admin")
    }
    u, err := h.Users.Update(c.Request().Context(), id, in.columns())
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return errJSON(c, http.StatusNotFound, "User not found")
    case errors.Is(err, repository.ErrConflict):
        return errJSON(c, http.StatusConflict, "auth_id already registered")
    case err != nil:
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// Bootstrap handles POST /users/bootstrap.  It is called by clients after
// every sign-in so that each identity has a user row.
func (h *UserHandler) Bootstrap(c echo.Context) error {
    var body struct {
        AuthID   uuid.UUID `json:"auth_id"`
        Role     string    `json:"role"`
        Name     *string   `json:"name"`
        Location *string   `json:"location"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    if body.AuthID == uuid.Nil {
        return errJSON(c, http.StatusBadRequest, "auth_id is required")
    }
    if !validRole(body.Role) {
        return errJSON(c, http.StatusBadRequest, "role must be mother, doula or admin")
    }
    u, err := h.Users.Bootstrap(c.Request().Context(), repository.BootstrapInput{
        AuthID:   body.AuthID,
        Role:     body.Role,
        Name:     body.Name,
        Location: body.Location,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// ListDoulas handles GET /doulas.  Only verified doulas are listed unless
// verified=false is passed.
func (h *UserHandler) ListDoulas(c echo.Context) error {
    verified, ok := queryBool(c, "verified", true)
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid verified")
    }
    minPrice, ok := queryFloat(c, "min_price")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid min_price")
    }
    maxPrice, ok := queryFloat(c, "max_price")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid max_price")
    }
    doulas, err := h.Users.ListDoulas(c.Request().Context(), repository.DoulaFilter{
        VerifiedOnly: verified,
        Location:     strings.TrimSpace(c.QueryParam("location")),
        MinPrice:     minPrice,
        MaxPrice:     maxPrice,
        Query:        strings.TrimSpace(c.QueryParam("q")),
        SortBy:       c.QueryParam("sort_by"),
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, doulas)
}

// GetDoula handles GET /doulas/:id.
func (h *UserHandler) GetDoula(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid doula id")
    }
    u, err := h.Users.GetByID(c.Request().Context(), id)
    if errors.Is(err, repository.ErrNotFound) || (err == nil && u.Role != model.RoleDoula) {
        return errJSON(c, http.StatusNotFound, "Doula not found")
    }
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}
