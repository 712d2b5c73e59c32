package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/logging"
	"github.com/JonMunkholm/catalogimport/internal/sheet"
)

// CategoryResponse describes an importable category and its columns.
type CategoryResponse struct {
	Type      core.ProductType `json:"type"`
	Label     string           `json:"label"`
	SKUPrefix string           `json:"skuPrefix,omitempty"`
	Columns   []ColumnResponse `json:"columns"`
}

// ColumnResponse describes one template column.
type ColumnResponse struct {
	Field       core.CanonicalField `json:"field"`
	Header      string              `json:"header"`
	Type        string              `json:"type"`
	Required    bool                `json:"required"`
	EnumValues  []string            `json:"enumValues,omitempty"`
	Example     string              `json:"example,omitempty"`
	Description string              `json:"description,omitempty"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var out []CategoryResponse
	for _, info := range s.service.Categories() {
		def, ok := core.Get(info.Type)
		if !ok {
			continue
		}
		cat := CategoryResponse{
			Type:      info.Type,
			Label:     info.Label,
			SKUPrefix: info.SKUPrefix,
			Columns:   make([]ColumnResponse, len(def.Fields)),
		}
		for i, f := range def.Fields {
			cat.Columns[i] = ColumnResponse{
				Field:       f.Field,
				Header:      f.HeaderLabel(),
				Type:        f.Type.String(),
				Required:    f.Required,
				EnumValues:  f.EnumValues,
				Example:     f.Example,
				Description: f.Description,
			}
		}
		out = append(out, cat)
	}
	writeJSON(w, out)
}

// handleDownloadTemplate serves the category's xlsx import template.
// The ".xlsx" suffix on the path is optional.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(chi.URLParam(r, "productType"), ".xlsx")
	productType, ok := core.ParseProductType(raw)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownProductType, raw), 0)
		return
	}
	def, ok := core.Get(productType)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownProductType, productType), 0)
		return
	}

	filename := fmt.Sprintf("%s_import_template.xlsx", productType)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := sheet.WriteTemplate(w, def); err != nil {
		logging.FromContext(r.Context()).Error("template write failed", "product_type", productType, "error", err)
	}
}

// PricingProfileRequest is the body of PUT /api/pricing-profile. Omitted or
// zero rates clear the vendor's value so the service default applies.
type PricingProfileRequest struct {
	GoldRatePerGram     decimal.Decimal `json:"goldRatePerGram"`
	MakingChargePerGram decimal.Decimal `json:"makingChargePerGram"`
}

// PricingProfileResponse shows the vendor's configured rates next to the
// rates an import would use right now.
type PricingProfileResponse struct {
	Configured PricingProfileRequest `json:"configured"`
	Effective  EffectiveRates        `json:"effective"`
}

// EffectiveRates are the per-batch pricing inputs.
type EffectiveRates struct {
	GoldRatePerGram      decimal.Decimal     `json:"goldRatePerGram"`
	MakingChargePerGram  decimal.Decimal     `json:"makingChargePerGram"`
	ExchangeRateINRtoUSD decimal.NullDecimal `json:"exchangeRateInrToUsd"`
}

var errProfilesDisabled = errors.New("pricing profiles are not configured")

func invalidProfile(err error) *core.UserError {
	return &core.UserError{
		Technical: err,
		User: core.UserMessage{
			Message: "Invalid pricing profile",
			Action:  "Send goldRatePerGram and makingChargePerGram as non-negative numbers",
			Code:    "REQ003",
		},
	}
}

func (s *Server) handleGetPricingProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		s.respondError(w, r, errProfilesDisabled, http.StatusNotImplemented)
		return
	}
	s.writePricingProfile(w, r)
}

func (s *Server) handlePutPricingProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		s.respondError(w, r, errProfilesDisabled, http.StatusNotImplemented)
		return
	}

	var req PricingProfileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, invalidProfile(fmt.Errorf("decode pricing profile: %w", err)), http.StatusBadRequest)
		return
	}
	if req.GoldRatePerGram.IsNegative() || req.MakingChargePerGram.IsNegative() {
		s.respondError(w, r, invalidProfile(errors.New("negative pricing rate")), http.StatusBadRequest)
		return
	}

	vendorID := core.VendorIDFromContext(r.Context())
	if err := s.profiles.SetPricingProfile(r.Context(), vendorID, core.PricingProfile{
		GoldRatePerGram:     req.GoldRatePerGram,
		MakingChargePerGram: req.MakingChargePerGram,
	}); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("pricing profile updated",
		"gold_rate_per_gram", req.GoldRatePerGram.String(),
		"making_charge_per_gram", req.MakingChargePerGram.String(),
	)
	s.writePricingProfile(w, r)
}

func (s *Server) writePricingProfile(w http.ResponseWriter, r *http.Request) {
	vendorID := core.VendorIDFromContext(r.Context())

	profile, err := s.profiles.PricingProfile(r.Context(), vendorID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	pctx, err := s.service.BuildPricingContext(r.Context(), vendorID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, PricingProfileResponse{
		Configured: PricingProfileRequest{
			GoldRatePerGram:     profile.GoldRatePerGram,
			MakingChargePerGram: profile.MakingChargePerGram,
		},
		Effective: EffectiveRates{
			GoldRatePerGram:      pctx.GoldRatePerGram,
			MakingChargePerGram:  pctx.MakingChargePerGram,
			ExchangeRateINRtoUSD: pctx.ExchangeRateINRtoUSD,
		},
	})
}
