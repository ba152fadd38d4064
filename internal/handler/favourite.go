package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/model"
    "github.com/iliyamo/doulacare/internal/repository"
)

// FavouriteHandler manages the doulas a mother has saved.
type FavouriteHandler struct {
    Favourites *repository.FavouriteRepo
    Users      *repository.UserRepo
}

func NewFavouriteHandler(favs *repository.FavouriteRepo, users *repository.UserRepo) *FavouriteHandler {
    if favs == nil || users == nil {
        panic("nil repository passed to NewFavouriteHandler")
    }
    return &FavouriteHandler{Favourites: favs, Users: users}
}

// Toggle handles POST /favourites/by-mother-auth/:uuid/toggle.
func (h *FavouriteHandler) Toggle(c echo.Context) error {
    motherAuth, ok := pathUUID(c, "uuid")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid auth id")
    }
    var body struct {
        DoulaID uint64 `json:"doula_id"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    ctx := c.Request().Context()
    if _, err := h.Users.GetByAuthIDAndRole(ctx, motherAuth, model.RoleMother); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return errJSON(c, http.StatusNotFound, "Mother not found")
        }
        return respondError(c, err)
    }
    doula, err := h.Users.GetByID(ctx, body.DoulaID)
    if errors.Is(err, repository.ErrNotFound) || (err == nil && doula.Role != model.RoleDoula) {
        return errJSON(c, http.StatusNotFound, "Doula not found")
    }
    if err != nil {
        return respondError(c, err)
    }
    fav, err := h.Favourites.Toggle(ctx, motherAuth, doula.ID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"favourited": fav})
}

// favouriteCard is one saved doula as shown in the mother's list.
type favouriteCard struct {
    FavouriteID uint64  `json:"favourite_id"`
    DoulaID     uint64  `json:"doula_id"`
    DoulaName   string  `json:"doula_name"`
    Location    *string `json:"location"`
    Verified    bool    `json:"verified"`
    Price       float64 `json:"price"`
    PhotoURL    *string `json:"photo_url"`
}

// Details handles GET /favourites/by-mother-auth/:uuid/details.  Saved
// users that are no longer doulas are skipped.
func (h *FavouriteHandler) Details(c echo.Context) error {
    motherAuth, ok := pathUUID(c, "uuid")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid auth id")
    }
    ctx := c.Request().Context()
    if _, err := h.Users.GetByAuthIDAndRole(ctx, motherAuth, model.RoleMother); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return errJSON(c, http.StatusNotFound, "Mother not found")
        }
        return respondError(c, err)
    }
    favs, err := h.Favourites.ListByMother(ctx, motherAuth)
    if err != nil {
        return respondError(c, err)
    }
    doulas, err := h.Users.GetByIDs(ctx, collect(favs, func(f model.Favourite) uint64 { return f.DoulaID }))
    if err != nil {
        return respondError(c, err)
    }
    out := make([]favouriteCard, 0, len(favs))
    for _, f := range favs {
        d, ok := doulas[f.DoulaID]
        if !ok || d.Role != model.RoleDoula {
            continue
        }
        out = append(out, favouriteCard{
            FavouriteID: f.ID,
            DoulaID:     d.ID,
            DoulaName:   d.Name,
            Location:    d.Location,
            Verified:    d.Verified,
            Price:       d.Price,
            PhotoURL:    d.PhotoURL,
        })
    }
    return c.JSON(http.StatusOK, out)
}
