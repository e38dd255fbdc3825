package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"member-info-api/internal/models"
	"member-info-api/internal/services"
	"member-info-api/pkg/lambda"
)

// MemberHandler handles member requests
type MemberHandler struct {
	memberService services.MemberService
	logger        *logrus.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService services.MemberService, logger *logrus.Logger) *MemberHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// @Summary List members
// @Description Get every member record
// @Tags members
// @Produce json
// @Success 200 {object} MembersResponse
// @Failure 500 {object} StoreErrorResponse
// @Router /members [get]
func (h *MemberHandler) HandleList(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	members, err := h.memberService.ListMembers(ctx)
	if err != nil {
		h.logFailure(req, "Scan", err)
		return storeErrorResponse("Scan", err)
	}

	return jsonResponse(http.StatusOK, MembersResponse{Members: members})
}

// @Summary Get a member
// @Description Get a member by email. A missing member returns 200 without a member field.
// @Tags members
// @Produce json
// @Param email query string true "Member email"
// @Success 200 {object} MemberResponse
// @Router /member [get]
func (h *MemberHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	member, err := h.memberService.GetMember(ctx, req.Query(models.AttrEmail))
	if err != nil {
		h.logFailure(req, "Get", err)
		return storeErrorResponse("Get", err)
	}

	return jsonResponse(http.StatusOK, MemberResponse{Member: member})
}

// @Summary Create a member
// @Tags members
// @Accept json
// @Produce json
// @Success 200 {object} OperationResponse
// @Failure 400 {object} OperationResponse
// @Router /member [post]
func (h *MemberHandler) HandleCreate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	member, err := models.DecodeMember(req.Body)
	if err != nil {
		return invalidBody(OperationSave)
	}

	if err := h.memberService.SaveMember(ctx, member); err != nil {
		if errors.Is(err, models.ErrInvalidEmail) {
			return jsonResponse(http.StatusBadRequest, OperationResponse{
				Operation: OperationSave,
				Message:   MessageError,
				Error:     ErrInvalidEmailFormat,
			})
		}
		h.logFailure(req, OperationSave, err)
		return operationError(OperationSave, err, ErrMemberExists)
	}

	return jsonResponse(http.StatusOK, OperationResponse{
		Operation: OperationSave,
		Message:   MessageSuccess,
		Item:      member,
	})
}

// @Summary Update one member attribute
// @Description Sets colName to newValue on the member with the given email
// @Tags members
// @Accept json
// @Produce json
// @Param update body models.UpdateRequest true "Attribute update"
// @Success 200 {object} OperationResponse
// @Failure 400 {object} OperationResponse
// @Router /member [put]
func (h *MemberHandler) HandleUpdate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	update, err := models.DecodeUpdateRequest(req.Body)
	if err != nil {
		return invalidBody(OperationUpdate)
	}

	attributes, err := h.memberService.UpdateMember(ctx, update)
	if err != nil {
		h.logFailure(req, OperationUpdate, err)
		return operationError(OperationUpdate, err, ErrMemberNotExists)
	}

	return jsonResponse(http.StatusOK, OperationResponse{
		Operation: OperationUpdate,
		Message:   MessageSuccess,
		Update:    StoreOutput{Attributes: attributes},
	})
}

// HandleDelete removes a member. Deleting a missing member succeeds with an empty Item.
// @Summary Delete a member
// @Tags members
// @Produce json
// @Param email query string true "Member email"
// @Success 200 {object} OperationResponse
// @Router /member [delete]
func (h *MemberHandler) HandleDelete(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	old, err := h.memberService.DeleteMember(ctx, req.Query(models.AttrEmail))
	if err != nil {
		h.logFailure(req, OperationDelete, err)
		return operationError(OperationDelete, err, "")
	}

	return jsonResponse(http.StatusOK, OperationResponse{
		Operation: OperationDelete,
		Message:   MessageSuccess,
		Item:      StoreOutput{Attributes: old},
	})
}

func invalidBody(operation string) (*lambda.Response, error) {
	return jsonResponse(http.StatusBadRequest, OperationResponse{
		Operation: operation,
		Message:   MessageError,
		Error:     ErrInvalidRequestBody,
	})
}

func (h *MemberHandler) logFailure(req *lambda.Request, op string, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"method":     req.Method,
		"path":       req.Path,
		"op":         op,
	}).WithError(err).Warn("Member operation failed")
}
