package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaotiyanlove-star/starriver/internal/core"
	"github.com/xiaotiyanlove-star/starriver/internal/model"
	"github.com/xiaotiyanlove-star/starriver/internal/snapshot"
)

const version = "1.2.0"

// Handler HTTP 路由处理器
type Handler struct {
	service *core.JournalService
}

// NewHandler 创建路由处理器
func NewHandler(service *core.JournalService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册所有路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/timeline", h.Timeline)
		v1.GET("/memo/:date", h.GetDay)
		v1.PUT("/memo/:date", h.SaveMemory)

		v1.GET("/moods", h.Moods)
		v1.POST("/moods", h.AddMood)

		v1.GET("/theme", h.Theme)
		v1.PUT("/theme", h.SetTheme)

		v1.GET("/export", h.Export)
		v1.POST("/import", h.Import)

		v1.POST("/session", h.Session)
		v1.GET("/partner", h.Partner)
		v1.POST("/share/invite", h.Invite)
		v1.POST("/share/accept", h.AcceptInvite)

		v1.GET("/letters", h.Letters)
		v1.POST("/letters", h.SendLetter)
		v1.POST("/letters/:id/read", h.MarkLetterRead)
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	count, err := h.service.MemoryCount()
	if err != nil {
		log.Printf("[WARN] 健康检查读取记忆总数失败: %v", err)
	}
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:      "ok",
		MemoryCount: count,
		DayIndex:    h.service.TodayIndex(),
		Version:     version,
	})
}

// Timeline 拉取完整时间线，view=merged 时附带伴侣记忆
func (h *Handler) Timeline(c *gin.Context) {
	view := c.DefaultQuery("view", "mine")
	days, err := h.service.Timeline(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成时间线失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"days":  days,
		"total": len(days),
	})
}

// GetDay 读取某一天双方的记忆
func (h *Handler) GetDay(c *gin.Context) {
	mine, partner, err := h.service.GetDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"memory":         mine,
		"partner_memory": partner,
	})
}

// SaveMemory 保存某一天的记忆（整条覆盖写）
func (h *Handler) SaveMemory(c *gin.Context) {
	var req model.SaveMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[API ERROR] SaveMemory payload validation failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	mem, err := h.service.SaveMemory(c.Request.Context(), c.Param("date"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存记忆失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "记忆已保存",
		"data":    mem,
	})
}

// Moods 读取心情选项
func (h *Handler) Moods(c *gin.Context) {
	moods, err := h.service.Moods()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": moods})
}

// AddMood 新增一个自定义心情选项
func (h *Handler) AddMood(c *gin.Context) {
	var req model.AddMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	moods, err := h.service.AddMood(model.MoodOption{
		Label:      req.Label,
		ColorClass: req.ColorClass,
		BaseColor:  req.BaseColor,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": moods})
}

// Theme 读取主题 id
func (h *Handler) Theme(c *gin.Context) {
	id, err := h.service.ThemeID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme_id": id})
}

// SetTheme 保存主题 id
func (h *Handler) SetTheme(c *gin.Context) {
	var req struct {
		ThemeID string `json:"theme_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	if err := h.service.SetThemeID(req.ThemeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "主题已保存"})
}

// Export 导出快照文档
func (h *Handler) Export(c *gin.Context) {
	doc, err := h.service.ExportSnapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="starriver-memories.json"`)
	c.JSON(http.StatusOK, doc)
}

// Import 导入快照文档并与当前状态合并。
// 支持 multipart 的 file 字段或直接以请求体提交 JSON。
func (h *Handler) Import(c *gin.Context) {
	data, err := readImportPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取导入文件失败: " + err.Error()})
		return
	}

	count, err := h.service.ImportSnapshot(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, snapshot.ErrInvalidDocument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "导入失败，请确保文件格式正确 (JSON)"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导入失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "记忆已成功融合",
		"total":   count,
	})
}

// readImportPayload 兼容两种提交方式取出文档字节
func readImportPayload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// Session 建立远端身份并做一次全量对账
func (h *Handler) Session(c *gin.Context) {
	var req model.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	if err := h.service.EstablishIdentity(c.Request.Context(), req.UserID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "建立远端身份失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "远端身份已建立",
		"user_id":    h.service.UserID(),
		"partner_id": h.service.PartnerID(),
	})
}

// Partner 查询配对状态与伴侣展示名
func (h *Handler) Partner(c *gin.Context) {
	profile, err := h.service.PartnerProfile(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrNoIdentity) || errors.Is(err, core.ErrNoPartner) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"partner_id": h.service.PartnerID(),
		"profile":    profile,
	})
}

// Invite 发起配对邀请
func (h *Handler) Invite(c *gin.Context) {
	var req model.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	share, err := h.service.CreateInvite(c.Request.Context(), req.PartnerEmail)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "创建邀请失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": share})
}

// AcceptInvite 凭邀请码接受配对
func (h *Handler) AcceptInvite(c *gin.Context) {
	var req model.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	share, err := h.service.AcceptInvite(c.Request.Context(), req.InviteToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "接受邀请失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": share})
}

// Letters 拉取当前可见的信件
func (h *Handler) Letters(c *gin.Context) {
	letters, err := h.service.Letters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "拉取信件失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  letters,
		"total": len(letters),
	})
}

// SendLetter 给伴侣寄一封信
func (h *Handler) SendLetter(c *gin.Context) {
	var req model.SendLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	letter, err := h.service.SendLetter(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, core.ErrNoPartner) {
			c.JSON(http.StatusConflict, gin.H{"error": "尚未配对伴侣，无法寄信"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "寄信失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "信已寄出",
		"data":    letter,
	})
}

// MarkLetterRead 标记一封信为已读
func (h *Handler) MarkLetterRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "需要提供 id"})
		return
	}
	if err := h.service.MarkLetterRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "标记已读失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已标记为已读"})
}
