package router

import (
	"context"
	"testing"

	"resume-ranker/internal/api/handler"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
)

type nopService struct{}

func (nopService) ProcessBatch(context.Context, processor.BatchRequest) (*processor.BatchResult, error) {
	return nil, processor.NewNoDocumentsError()
}

func (nopService) ParseDocument(context.Context, processor.Document) types.ResumeRecord {
	return types.ResumeRecord{}
}

func (nopService) ValidateDocument(processor.Document) error { return nil }

func TestRegisterRoutes(t *testing.T) {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, handler.NewResumeHandler(nopService{}))

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, consts.StatusOK, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/resumes/rank", nil)
	assert.Equal(t, consts.StatusBadRequest, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/resumes/parse", nil)
	assert.Equal(t, consts.StatusBadRequest, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/resumes/rank", nil)
	assert.NotEqual(t, consts.StatusOK, resp.Code)
}
