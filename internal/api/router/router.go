package router

import (
	"resume-ranker/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler) {
	api := h.Group("/api/v1")

	resumes := api.Group("/resumes")
	resumes.POST("/rank", resumeHandler.HandleRank)
	resumes.POST("/parse", resumeHandler.HandleParse)

	// 添加健康检查
	api.GET("/health", resumeHandler.HandleHealth)
}
