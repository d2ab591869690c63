package handler

import (
	"artisanmarket/internal/usecase"
)

var (
	userHandler        *UserHandler
	productHandler     *ProductHandler
	negotiationHandler *NegotiationHandler
	reviewHandler      *ReviewHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	productUseCase *usecase.ProductUseCase,
	negotiationUseCase *usecase.NegotiationUseCase,
	sessionUseCase *usecase.SessionUseCase,
	reviewUseCase *usecase.ReviewUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	productHandler = NewProductHandler(productUseCase)
	negotiationHandler = NewNegotiationHandler(negotiationUseCase, sessionUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetNegotiationHandler() *NegotiationHandler {
	return negotiationHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}
