package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/headcount"
	"github.com/emowed/emowed-server/internal/invite"
)

type partnerInvitationView struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	SenderID       string     `json:"sender_id"`
	ReceiverEmail  string     `json:"receiver_email"`
	Status         string     `json:"status"`
	RejectionCount int        `json:"rejection_count"`
	Message        *string    `json:"message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
}

func partnerInvitationToView(inv *database.PartnerInvitation) partnerInvitationView {
	return partnerInvitationView{
		ID:             inv.ID,
		Code:           inv.Code,
		SenderID:       inv.SenderID,
		ReceiverEmail:  inv.ReceiverEmail,
		Status:         inv.EffectiveStatus(time.Now().UTC()),
		RejectionCount: inv.RejectionCount,
		Message:        nullableString(inv.Message),
		CreatedAt:      inv.CreatedAt,
		ExpiresAt:      inv.ExpiresAt,
		RespondedAt:    nullableTime(inv.RespondedAt),
	}
}

// HandleCreatePartnerInvitation creates a partner invitation and returns
// the composite result shape with the generated code.
func HandleCreatePartnerInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req struct {
			ReceiverEmail string `json:"receiver_email"`
			Message       string `json:"message"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		inv, err := s.Invites().CreatePartnerInvitation(r.Context(), callerID, req.ReceiverEmail, req.Message)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":       false,
				"error_message": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success":    true,
			"code":       inv.Code,
			"invitation": partnerInvitationToView(inv),
		})
	}
}

// HandleGetPartnerInvitation fetches an invitation by code, with expiry
// computed at read time.
func HandleGetPartnerInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := s.Invites().GetPartnerInvitation(r.Context(), mux.Vars(r)["code"])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, partnerInvitationToView(inv))
	}
}

// HandleAcceptPartnerInvitation accepts an invitation and returns the
// resulting couple.
func HandleAcceptPartnerInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		couple, err := s.Invites().AcceptPartnerInvitation(r.Context(), mux.Vars(r)["code"], callerID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"couple_id":    couple.ID,
			"status":       couple.Status,
			"engaged_date": couple.EngagedDate,
		})
	}
}

// HandleRejectPartnerInvitation rejects an invitation.
func HandleRejectPartnerInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		if err := s.Invites().RejectPartnerInvitation(r.Context(), mux.Vars(r)["code"], callerID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": database.InvitationStatusRejected})
	}
}

// HandleCreateVendorInvitation invites a vendor to a wedding.
func HandleCreateVendorInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req struct {
			VendorID string `json:"vendor_id"`
			Category string `json:"category"`
			Message  string `json:"message"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		inv, err := s.Invites().CreateVendorInvitation(r.Context(), callerID, mux.Vars(r)["id"], req.VendorID, req.Category, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":         inv.ID,
			"status":     inv.EffectiveStatus(time.Now().UTC()),
			"expires_at": inv.ExpiresAt,
		})
	}
}

// HandleRespondVendorInvitation accepts or rejects a vendor invitation
// depending on the action route variable.
func HandleRespondVendorInvitation(s Server, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		id := mux.Vars(r)["id"]
		var err error
		status := database.InvitationStatusAccepted
		if accept {
			err = s.Invites().AcceptVendorInvitation(r.Context(), id, callerID)
		} else {
			err = s.Invites().RejectVendorInvitation(r.Context(), id, callerID)
			status = database.InvitationStatusRejected
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	}
}

// HandleCreateGuestInvitation invites a guest by email.
func HandleCreateGuestInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req struct {
			ReceiverEmail   string `json:"receiver_email"`
			ReceiverName    string `json:"receiver_name"`
			Role            string `json:"role"`
			Side            string `json:"side"`
			CanInviteOthers bool   `json:"can_invite_others"`
			PersonalMessage string `json:"personal_message"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		inv, err := s.Invites().CreateGuestInvitation(r.Context(), callerID, mux.Vars(r)["id"], invite.GuestInvitationInput{
			ReceiverEmail:   req.ReceiverEmail,
			ReceiverName:    req.ReceiverName,
			Role:            req.Role,
			Side:            req.Side,
			CanInviteOthers: req.CanInviteOthers,
			PersonalMessage: req.PersonalMessage,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":         inv.ID,
			"status":     inv.EffectiveStatus(time.Now().UTC()),
			"expires_at": inv.ExpiresAt,
		})
	}
}

// HandleRespondGuestInvitation accepts or rejects a guest invitation.
func HandleRespondGuestInvitation(s Server, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		id := mux.Vars(r)["id"]
		if accept {
			guest, err := s.Invites().AcceptGuestInvitation(r.Context(), id, callerID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, guestToView(guest))
			return
		}

		if err := s.Invites().RejectGuestInvitation(r.Context(), id, callerID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": database.InvitationStatusRejected})
	}
}

// roundedHeadcount is shared by the RSVP and snapshot views.
func roundedHeadcount(v float64) float64 {
	return headcount.Round2(v)
}
