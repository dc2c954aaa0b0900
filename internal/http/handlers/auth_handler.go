// README: Account handlers for register and login.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbook/internal/modules/user"
)

type AccountService interface {
	Register(ctx context.Context, cmd user.RegisterCommand) (*user.User, error)
	Login(ctx context.Context, username, password string) (*user.LoginResult, error)
}

type AuthHandler struct {
	users AccountService
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{users: svc}
}

type registerReq struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userResp struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func toUserResp(u *user.User) userResp {
	return userResp{ID: int64(u.ID), Username: u.Username, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: string(u.Role)}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	// admins are provisioned out of band
	if user.Role(req.Role) == user.RoleAdmin {
		writeError(c, http.StatusForbidden, "cannot self-register as admin")
		return
	}
	u, err := h.users.Register(c.Request.Context(), user.RegisterCommand{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toUserResp(u))
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"token": res.Token, "user": toUserResp(res.User)})
}
