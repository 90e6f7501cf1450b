package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/helpers"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

// ListTargetsHandler returns all stored targets
func ListTargetsHandler(c *gin.Context) {
	targets, err := svc.ListTargets(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if targets == nil {
		targets = []datamodel.OeeTarget{}
	}
	c.JSON(http.StatusOK, targets)
}

// ListTargetsForEquipmentHandler returns the targets of one equipment unit
func ListTargetsForEquipmentHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	targets, err := svc.ListTargetsForEquipment(c.Request.Context(), equipmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if targets == nil {
		targets = []datamodel.OeeTarget{}
	}
	c.JSON(http.StatusOK, targets)
}

// CreateTargetHandler persists a new target record
func CreateTargetHandler(c *gin.Context) {
	var target datamodel.OeeTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	if err := svc.CreateTarget(c.Request.Context(), &target); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, target)
}

// UpdateTargetHandler overwrites the updatable fields of a stored target
func UpdateTargetHandler(c *gin.Context) {
	targetID, err := parseID(c, "targetId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	var updates datamodel.OeeTarget
	if err = c.ShouldBindJSON(&updates); err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	target, err := svc.UpdateTarget(c.Request.Context(), targetID, updates)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// DeleteTargetHandler removes a target record
func DeleteTargetHandler(c *gin.Context) {
	targetID, err := parseID(c, "targetId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	if err = svc.DeleteTarget(c.Request.Context(), targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
