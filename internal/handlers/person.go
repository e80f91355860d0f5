// internal/handlers/person.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type PersonHandler struct {
	personService *services.PersonService
}

func NewPersonHandler(personService *services.PersonService) *PersonHandler {
	return &PersonHandler{
		personService: personService,
	}
}

// GET /people
func (h *PersonHandler) GetPeople(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	people, total, err := h.personService.ListPeople(c.Request.Context(), ownerID, services.PersonFilter{
		PaginationParams: params,
		Kind:             c.Query("kind"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(people, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /people
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreatePersonRequest
	if !bindJSON(c, &req) {
		return
	}

	person, err := h.personService.CreatePerson(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPersonCreated),
		"person":  person,
	})
}

// GET /people/:id
func (h *PersonHandler) GetPerson(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.personService.GetActivity(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, activity)
}

// PUT /people/:id
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePersonRequest
	if !bindJSON(c, &req) {
		return
	}

	person, err := h.personService.UpdatePerson(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPersonUpdated),
		"person":  person,
	})
}

// DELETE /people/:id
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.personService.DeletePerson(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPersonDeleted),
	})
}
