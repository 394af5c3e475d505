package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func userRouter(svc *MockUserUseCase, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/users", asUser(userID, role))
	NewUserHandler(svc).Register(group)
	return router
}

func TestUserHandler_Profile(t *testing.T) {
	svc := new(MockUserUseCase)
	svc.On("Profile", mock.Anything, "u-1").
		Return(&domain.User{ID: "u-1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleUser}, nil)

	router := userRouter(svc, "u-1", domain.RoleUser)
	rec := doJSON(t, router, http.MethodGet, "/api/users/profile", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body userResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body.ID)
	assert.Equal(t, "Asha", body.Name)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	svc := new(MockUserUseCase)
	svc.On("UpdateProfile", mock.Anything, "u-1", "Asha K", "9900112233").
		Return(&domain.User{ID: "u-1", Name: "Asha K", Phone: "9900112233"}, nil)

	router := userRouter(svc, "u-1", domain.RoleUser)
	rec := doJSON(t, router, http.MethodPut, "/api/users/profile", gin.H{
		"name": "Asha K", "phone": "9900112233",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile updated")
	svc.AssertExpectations(t)
}

func TestUserHandler_List_AdminOnly(t *testing.T) {
	svc := new(MockUserUseCase)

	router := userRouter(svc, "u-1", domain.RoleUser)
	rec := doJSON(t, router, http.MethodGet, "/api/users/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything)

	svc.On("List", mock.Anything).Return([]domain.User{{ID: "u-1"}, {ID: "u-2"}}, nil)
	admin := userRouter(svc, "admin-1", domain.RoleAdmin)
	rec = doJSON(t, admin, http.MethodGet, "/api/users/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body []userResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestUserHandler_Delete_AdminOnly(t *testing.T) {
	svc := new(MockUserUseCase)

	router := userRouter(svc, "u-1", domain.RoleUser)
	rec := doJSON(t, router, http.MethodDelete, "/api/users/u-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	svc.On("Delete", mock.Anything, "u-2").Return(nil)
	admin := userRouter(svc, "admin-1", domain.RoleAdmin)
	rec = doJSON(t, admin, http.MethodDelete, "/api/users/u-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
