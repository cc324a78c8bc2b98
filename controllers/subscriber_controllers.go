package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/services"
)

const subscriberConflictMsg = "Email already subscribed"

type SubscriberController struct {
	Subscribers *services.SubscriberService
	Errors      ErrorHandler
}

func NewSubscriberController(subscribers *services.SubscriberService, errs ErrorHandler) *SubscriberController {
	return &SubscriberController{Subscribers: subscribers, Errors: errs}
}

// Subscribe handles POST /api/subscribers
func (sc *SubscriberController) Subscribe(c *gin.Context) {
	var req services.SubscribeRequest
	if !sc.Errors.bindJSON(c, &req) {
		return
	}

	result, err := sc.Subscribers.Subscribe(c.Request.Context(), req)
	if err != nil {
		sc.Errors.Respond(c, err, subscriberConflictMsg, "Internal server error")
		return
	}

	if result.Outcome == services.SubscriptionReactivated {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Subscription reactivated",
			"subscriberId": result.Subscriber.ID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"subscriberId": result.Subscriber.ID,
		"subscribedAt": result.Subscriber.SubscribedAt,
		"message":      "Successfully subscribed to newsletter",
	})
}

// Unsubscribe handles POST /api/subscribers/unsubscribe
func (sc *SubscriberController) Unsubscribe(c *gin.Context) {
	var req services.SubscribeRequest
	if !sc.Errors.bindJSON(c, &req) {
		return
	}

	sub, err := sc.Subscribers.Unsubscribe(c.Request.Context(), req)
	if err != nil {
		sc.Errors.Respond(c, err, subscriberConflictMsg, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Successfully unsubscribed",
		"subscriberId": sub.ID,
	})
}
