package web

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/campaign"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/task"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledgerSvc    ledger.Service
	campaignSvc  campaign.Service
	taskSvc      task.Service
	entrySvc     entry.Service
	reconcileSvc reconcile.Service
}

func NewHandler(
	ledgerSvc ledger.Service,
	campaignSvc campaign.Service,
	taskSvc task.Service,
	entrySvc entry.Service,
	reconcileSvc reconcile.Service,
) *Handler {
	return &Handler{
		ledgerSvc:    ledgerSvc,
		campaignSvc:  campaignSvc,
		taskSvc:      taskSvc,
		entrySvc:     entrySvc,
		reconcileSvc: reconcileSvc,
	}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	ag := server.Group("/accounts")
	ag.POST("", wrapBody(h.CreateAccount))
	ag.GET("", wrap(h.ListAccounts))
	ag.GET("/:id", wrap(h.GetAccount))
	ag.PUT("/:id/active", wrapBody(h.SetActive))

	cg := server.Group("/campaigns")
	cg.POST("", wrapBody(h.CreateCampaign))
	cg.GET("/:id", wrap(h.GetCampaign))
	cg.POST("/:id/plan", wrapBody(h.Plan))
	cg.PUT("/:id/allocation", wrapBody(h.CommitAllocation))
	cg.PUT("/:id/status", wrapBody(h.UpdateCampaignStatus))
	cg.POST("/:id/recipients/remove", wrapBody(h.RemoveRecipient))
	cg.POST("/:id/tasks", wrapBody(h.CreateTask))
	cg.GET("/:id/tasks", wrap(h.ListTasks))

	tg := server.Group("/tasks")
	tg.GET("/:id", wrap(h.GetTask))
	tg.POST("/:id/dispatch", wrap(h.DispatchTask))
	tg.GET("/:id/entries", wrap(h.ListEntries))

	eg := server.Group("/entries")
	eg.GET("/:id", wrap(h.GetEntry))
	eg.POST("/:id/send-now", wrap(h.SendNow))
	eg.POST("/:id/resend", wrap(h.Resend))
}

func (h *Handler) CreateAccount(ctx *gin.Context, req CreateAccountReq) (Account, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	acc, err := h.ledgerSvc.CreateAccount(ctx.Request.Context(), domain.Account{
		Email:      req.Email,
		DailyLimit: req.DailyLimit,
		Active:     active,
	})
	if err != nil {
		return Account{}, err
	}
	return newAccount(acc), nil
}

func (h *Handler) ListAccounts(ctx *gin.Context) ([]Account, error) {
	offset, limit, err := page(ctx)
	if err != nil {
		return nil, err
	}
	accs, err := h.ledgerSvc.ListAccounts(ctx.Request.Context(), offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(accs, func(_ int, src domain.Account) Account {
		return newAccount(src)
	}), nil
}

func (h *Handler) GetAccount(ctx *gin.Context) (Account, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Account{}, err
	}
	acc, err := h.ledgerSvc.GetAccount(ctx.Request.Context(), id)
	if err != nil {
		return Account{}, err
	}
	return newAccount(acc), nil
}

func (h *Handler) SetActive(ctx *gin.Context, req SetActiveReq) (Account, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Account{}, err
	}
	if err = h.ledgerSvc.SetActive(ctx.Request.Context(), id, req.Active); err != nil {
		return Account{}, err
	}
	return h.GetAccount(ctx)
}

func (h *Handler) CreateCampaign(ctx *gin.Context, req CreateCampaignReq) (Campaign, error) {
	recipients, err := NormalizeRecipients(req.Recipients)
	if err != nil {
		return Campaign{}, err
	}
	c, err := h.campaignSvc.Create(ctx.Request.Context(), domain.Campaign{
		Name:       req.Name,
		Recipients: recipients,
	})
	if err != nil {
		return Campaign{}, err
	}
	return newCampaign(c), nil
}

func (h *Handler) GetCampaign(ctx *gin.Context) (Campaign, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Campaign{}, err
	}
	c, err := h.campaignSvc.Get(ctx.Request.Context(), id)
	if err != nil {
		return Campaign{}, err
	}
	return newCampaign(c), nil
}

func (h *Handler) Plan(ctx *gin.Context, req PlanReq) (Plan, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Plan{}, err
	}
	plan, err := h.campaignSvc.Plan(ctx.Request.Context(), campaign.PlanRequest{
		CampaignID:  id,
		Strategy:    domain.AllocationStrategy(req.Strategy),
		AccountIDs:  req.AccountIDs,
		Manual:      toAllocation(req.Manual),
		Incremental: req.Incremental,
	})
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Allocation: newAllocation(plan.Allocation),
		Requested:  plan.Requested,
		Allocated:  plan.Allocated,
		Shortfall:  plan.Shortfall,
	}, nil
}

func (h *Handler) CommitAllocation(ctx *gin.Context, req CommitReq) (Campaign, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Campaign{}, err
	}
	c, err := h.campaignSvc.CommitAllocation(ctx.Request.Context(), id, toAllocation(req.Allocation))
	if err != nil {
		return Campaign{}, err
	}
	return newCampaign(c), nil
}

func (h *Handler) UpdateCampaignStatus(ctx *gin.Context, req UpdateStatusReq) (Campaign, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Campaign{}, err
	}
	if err = h.campaignSvc.UpdateStatus(ctx.Request.Context(), id, domain.CampaignStatus(req.Status)); err != nil {
		return Campaign{}, err
	}
	return h.GetCampaign(ctx)
}

func (h *Handler) RemoveRecipient(ctx *gin.Context, req RemoveRecipientReq) (RemoveRecipientResp, error) {
	id, err := paramID(ctx)
	if err != nil {
		return RemoveRecipientResp{}, err
	}
	emails, err := NormalizeRecipients([]string{req.Email})
	if err != nil {
		return RemoveRecipientResp{}, err
	}
	if len(emails) == 0 {
		emails = []string{req.Email}
	}
	res, err := h.reconcileSvc.RemoveRecipient(ctx.Request.Context(), id, emails[0])
	if err != nil {
		return RemoveRecipientResp{}, err
	}
	return newRemoveRecipientResp(res), nil
}

func (h *Handler) CreateTask(ctx *gin.Context, req CreateTaskReq) (Task, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Task{}, err
	}
	t, err := h.taskSvc.CreateTask(ctx.Request.Context(), domain.Task{
		CampaignID:  id,
		Subject:     req.Subject,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt,
		SendRate:    req.SendRate,
		Type:        domain.TaskType(req.Type),
	})
	if err != nil {
		return Task{}, err
	}
	return newTask(t), nil
}

func (h *Handler) ListTasks(ctx *gin.Context) ([]Task, error) {
	id, err := paramID(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := h.taskSvc.ListByCampaign(ctx.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return slice.Map(ts, func(_ int, src domain.Task) Task {
		return newTask(src)
	}), nil
}

func (h *Handler) GetTask(ctx *gin.Context) (Task, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Task{}, err
	}
	t, err := h.taskSvc.Get(ctx.Request.Context(), id)
	if err != nil {
		return Task{}, err
	}
	return newTask(t), nil
}

func (h *Handler) DispatchTask(ctx *gin.Context) (Task, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Task{}, err
	}
	t, err := h.taskSvc.Dispatch(ctx.Request.Context(), id)
	if err != nil {
		return Task{}, err
	}
	return newTask(t), nil
}

func (h *Handler) ListEntries(ctx *gin.Context) ([]Entry, error) {
	id, err := paramID(ctx)
	if err != nil {
		return nil, err
	}
	offset, limit, err := page(ctx)
	if err != nil {
		return nil, err
	}
	es, err := h.entrySvc.ListByTask(ctx.Request.Context(), id, offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(es, func(_ int, src domain.QueueEntry) Entry {
		return newEntry(src)
	}), nil
}

func (h *Handler) GetEntry(ctx *gin.Context) (Entry, error) {
	return h.entryOp(ctx, h.entrySvc.Get)
}

func (h *Handler) SendNow(ctx *gin.Context) (Entry, error) {
	return h.entryOp(ctx, h.entrySvc.SendNow)
}

func (h *Handler) Resend(ctx *gin.Context) (Entry, error) {
	return h.entryOp(ctx, h.entrySvc.Resend)
}

func (h *Handler) entryOp(ctx *gin.Context,
	fn func(ctx context.Context, id int64) (domain.QueueEntry, error)) (Entry, error) {
	id, err := paramID(ctx)
	if err != nil {
		return Entry{}, err
	}
	e, err := fn(ctx.Request.Context(), id)
	if err != nil {
		return Entry{}, err
	}
	return newEntry(e), nil
}
