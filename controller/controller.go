package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"stake-ledger/logger"
	"stake-ledger/service"
	"stake-ledger/types"
	"stake-ledger/util"
)

const (
	ResponseCodeOk             = 200
	ResponseCodeParamsError    = 50001
	ResponseCodeUnauthorized   = 50401
	ResponseCodeNotOwner       = 50404
	ResponseCodeStateConflict  = 50409
	ResponseCodeTransferFailed = 50502
	ResponseCodeBusy           = 50503
	ResponseCodeInternal       = 50000
)

type Response struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg"`
	Data  interface{} `json:"data"`
	Total int         `json:"total,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{Code: ResponseCodeOk, Data: data})
}

func okTotal(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, &Response{Code: ResponseCodeOk, Data: data, Total: total})
}

func fail(c *gin.Context, err error) {
	c.JSON(http.StatusOK, &Response{Code: errorCode(err), Msg: err.Error()})
}

func paramsError(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, &Response{Code: ResponseCodeParamsError, Msg: msg})
}

// errorCode maps the error-kind vocabulary onto envelope codes so API
// callers always see a specific failure class, never a generic one.
func errorCode(err error) int {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return ResponseCodeUnauthorized
	case errors.Is(err, types.ErrNotOwner):
		return ResponseCodeNotOwner
	case errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrInvalidDuration),
		errors.Is(err, types.ErrInvalidAsset),
		errors.Is(err, types.ErrInvalidRecipient),
		errors.Is(err, types.ErrFeeRateOutOfRange):
		return ResponseCodeParamsError
	case errors.Is(err, types.ErrAlreadyRegistered),
		errors.Is(err, types.ErrNotRegistered),
		errors.Is(err, types.ErrProjectNotRegistered),
		errors.Is(err, types.ErrAssetNotConfigured),
		errors.Is(err, types.ErrDurationExists),
		errors.Is(err, types.ErrDurationNotFound),
		errors.Is(err, types.ErrStakeNotActive),
		errors.Is(err, types.ErrStillLocked):
		return ResponseCodeStateConflict
	case errors.Is(err, types.ErrTransferFailed):
		return ResponseCodeTransferFailed
	case errors.Is(err, types.ErrReentrantCall):
		return ResponseCodeBusy
	}
	return ResponseCodeInternal
}

type StakeResp struct {
	ID        uint64 `json:"id"`
	Owner     string `json:"owner"`
	Amount    uint64 `json:"amount"`
	ProjectID string `json:"project_id"`
	AssetID   string `json:"asset_id"`
	Duration  int64  `json:"duration"`
	CreatedAt int64  `json:"created_at"`
	UnlockAt  int64  `json:"unlock_at"`
	Status    string `json:"status"`
}

func toStakeResp(st *types.Stake) *StakeResp {
	return &StakeResp{
		ID:        st.ID,
		Owner:     st.Owner,
		Amount:    st.Amount,
		ProjectID: st.ProjectID,
		AssetID:   st.AssetID,
		Duration:  st.Duration,
		CreatedAt: st.CreatedAt.Unix(),
		UnlockAt:  st.UnlockAt.Unix(),
		Status:    st.Status.String(),
	}
}

func toStakeResps(stakes []*types.Stake) []*StakeResp {
	result := []*StakeResp{}
	for _, st := range stakes {
		result = append(result, toStakeResp(st))
	}
	return result
}

func StakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr, exist := c.GetQuery("id")
		if !exist {
			paramsError(c, "id required")
			return
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			paramsError(c, "invalid id")
			return
		}
		st := s.GetStake(id)
		if st == nil {
			ok(c, nil)
			return
		}
		ok(c, toStakeResp(st))
	}
}

func UserStakesEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, exist := c.GetQuery("owner")
		if !exist {
			paramsError(c, "owner required")
			return
		}
		stakes := s.GetUserStakes(owner)
		okTotal(c, toStakeResps(stakes), len(stakes))
	}
}

func ActiveUserStakesEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, exist := c.GetQuery("owner")
		if !exist {
			paramsError(c, "owner required")
			return
		}
		stakes := s.GetActiveUserStakes(owner)
		okTotal(c, toStakeResps(stakes), len(stakes))
	}
}

func ProjectStakesEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, exist := c.GetQuery("project")
		if !exist {
			paramsError(c, "project required")
			return
		}
		stakes := s.GetProjectStakes(project)
		okTotal(c, toStakeResps(stakes), len(stakes))
	}
}

type RegistryResp struct {
	Projects         []ProjectResp `json:"projects"`
	Durations        []int64       `json:"durations"`
	StandardRate     uint32        `json:"standard_rate"`
	StandardPercent  string        `json:"standard_percent"`
	EmergencyRate    uint32        `json:"emergency_rate"`
	EmergencyPercent string        `json:"emergency_percent"`
	FeeRecipient     string        `json:"fee_recipient"`
}

type ProjectResp struct {
	ProjectID  string `json:"project_id"`
	AssetID    string `json:"asset_id"`
	Registered bool   `json:"registered"`
}

func RegistryEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := s.GetRegistry()
		projects := []ProjectResp{}
		for _, p := range view.Projects {
			projects = append(projects, ProjectResp{
				ProjectID:  p.ProjectID,
				AssetID:    p.AssetID,
				Registered: p.Registered,
			})
		}
		ok(c, &RegistryResp{
			Projects:         projects,
			Durations:        view.Durations,
			StandardRate:     view.StandardRate,
			StandardPercent:  util.RateToPercent(view.StandardRate),
			EmergencyRate:    view.EmergencyRate,
			EmergencyPercent: util.RateToPercent(view.EmergencyRate),
			FeeRecipient:     view.FeeRecipient,
		})
	}
}

type SnapshotResp struct {
	ProjectID string `json:"project_id"`
	Amount    string `json:"amount"`
	Time      int64  `json:"time"`
}

func SnapshotsEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, exist := c.GetQuery("project")
		if !exist {
			paramsError(c, "project required")
			return
		}
		limitStr, _ := c.GetQuery("limit")
		limit, _ := strconv.Atoi(limitStr)
		offsetStr, _ := c.GetQuery("offset")
		offset, _ := strconv.Atoi(offsetStr)

		snapshots, total, err := s.GetSnapshots(project, validLimit(limit, 20, 100), validOffset(offset))
		if err != nil {
			logger.Logger.Errorf("GetSnapshots endpoint error: %v", err)
			fail(c, err)
			return
		}
		result := []*SnapshotResp{}
		for _, snap := range snapshots {
			result = append(result, &SnapshotResp{
				ProjectID: snap.ProjectID,
				Amount:    snap.Amount,
				Time:      snap.Time.Unix(),
			})
		}
		okTotal(c, result, total)
	}
}

type OpenStakeReq struct {
	Owner     string `json:"owner" binding:"required"`
	Amount    uint64 `json:"amount"`
	Duration  int64  `json:"duration"`
	ProjectID string `json:"project_id" binding:"required"`
}

func OpenStakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OpenStakeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		st, err := s.Stake(req.Owner, req.Amount, req.Duration, req.ProjectID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, toStakeResp(st))
	}
}

type CloseStakeReq struct {
	StakeID uint64 `json:"stake_id"`
	Caller  string `json:"caller" binding:"required"`
}

func UnstakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CloseStakeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.Unstake(req.StakeID, req.Caller); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

func EmergencyUnstakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CloseStakeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.EmergencyUnstake(req.StakeID, req.Caller); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

type ProjectReq struct {
	Caller    string `json:"caller" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
	AssetID   string `json:"asset_id"`
}

func RegisterProjectEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.RegisterProject(req.Caller, req.ProjectID, req.AssetID); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

func UnregisterProjectEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.UnregisterProject(req.Caller, req.ProjectID); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

func SetProjectAssetEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.SetProjectAsset(req.Caller, req.ProjectID, req.AssetID); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

type DurationReq struct {
	Caller string `json:"caller" binding:"required"`
	Days   int64  `json:"days"`
}

func AddDurationEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DurationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.AddDuration(req.Caller, req.Days); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

func RemoveDurationEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DurationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.RemoveDuration(req.Caller, req.Days); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

type FeeRateReq struct {
	Caller string `json:"caller" binding:"required"`
	Kind   string `json:"kind"`
	Rate   uint32 `json:"rate"`
}

func SetFeeRateEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FeeRateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		kind := types.FeeStandard
		switch req.Kind {
		case "standard", "":
		case "emergency":
			kind = types.FeeEmergency
		default:
			paramsError(c, "kind must be standard or emergency")
			return
		}
		if err := s.SetFeeRate(req.Caller, kind, req.Rate); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

type FeeRecipientReq struct {
	Caller    string `json:"caller" binding:"required"`
	Recipient string `json:"recipient"`
}

func SetFeeRecipientEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FeeRecipientReq
		if err := c.ShouldBindJSON(&req); err != nil {
			paramsError(c, err.Error())
			return
		}
		if err := s.SetFeeRecipient(req.Caller, req.Recipient); err != nil {
			fail(c, err)
			return
		}
		ok(c, nil)
	}
}

func validLimit(originLimit, defaultLimit, maxLimit int) int {
	if originLimit == 0 {
		return defaultLimit
	}
	if originLimit > maxLimit {
		return maxLimit
	}
	return originLimit
}

func validOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
