package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/xiaotiyanlove-star/starriver/config"
	"github.com/xiaotiyanlove-star/starriver/internal/core"
	"github.com/xiaotiyanlove-star/starriver/internal/model"
	"github.com/xiaotiyanlove-star/starriver/internal/remote"
	"github.com/xiaotiyanlove-star/starriver/internal/storage"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化本地存储
	local, err := storage.NewLocalStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("初始化本地存储失败: %v", err)
	}
	defer local.Close()

	// 可选的远端存储
	var remoteStore remote.Store
	if cfg.RemoteEnabled() {
		rs, err := remote.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.MediaBucket)
		if err != nil {
			log.Fatalf("初始化远端存储失败: %v", err)
		}
		remoteStore = rs
	}

	// 初始化核心服务
	service := core.NewJournalService(cfg, local, remoteStore)
	if cfg.RemoteUserID != "" && remoteStore != nil {
		if err := service.EstablishIdentity(context.Background(), cfg.RemoteUserID); err != nil {
			log.Printf("[WARN] 建立远端身份失败: %v", err)
		}
	}

	// 创建 MCP Server
	s := server.NewMCPServer(
		"StarRiver",
		"1.2.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	// ---------------------------------------------------------
	// Tool: save_day_memory
	// ---------------------------------------------------------
	saveTool := mcp.NewTool("save_day_memory",
		mcp.WithDescription("Save (or overwrite) the journal memory for one calendar day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day key in YYYY-MM-DD format")),
		mcp.WithString("title", mcp.Description("Title of the memory (default: Untitled)")),
		mcp.WithString("description", mcp.Description("Free-text body of the memory")),
		mcp.WithString("mood", mcp.Description("Mood label, e.g. 喜悦 / 平静 (default: 平淡)")),
	)

	s.AddTool(saveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("arguments must be a map"), nil
		}
		date, ok := args["date"].(string)
		if !ok {
			return mcp.NewToolResultError("date must be a string"), nil
		}
		title, _ := args["title"].(string)
		description, _ := args["description"].(string)
		mood, _ := args["mood"].(string)

		mem, err := service.SaveMemory(ctx, date, &model.SaveMemoryRequest{
			Title:       title,
			Description: description,
			Mood:        mood,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save memory: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Memory saved for %s: %s", mem.DateStr, mem.Title)), nil
	})

	// ---------------------------------------------------------
	// Tool: get_day_memory
	// ---------------------------------------------------------
	getTool := mcp.NewTool("get_day_memory",
		mcp.WithDescription("Get the journal memory for one calendar day, including the partner's entry when linked."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day key in YYYY-MM-DD format")),
	)

	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("arguments must be a map"), nil
		}
		date, ok := args["date"].(string)
		if !ok {
			return mcp.NewToolResultError("date must be a string"), nil
		}

		mine, partner, err := service.GetDay(date)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get memory: %v", err)), nil
		}
		if mine == nil && partner == nil {
			return mcp.NewToolResultText("No memory recorded for that day."), nil
		}

		var resp string
		if mine != nil {
			resp += fmt.Sprintf("Mine: [%s] %s — %s\n", mine.Mood, mine.Title, mine.Description)
		}
		if partner != nil {
			resp += fmt.Sprintf("Partner: [%s] %s — %s\n", partner.Mood, partner.Title, partner.Description)
		}
		return mcp.NewToolResultText(resp), nil
	})

	// ---------------------------------------------------------
	// Tool: timeline_stats
	// ---------------------------------------------------------
	statsTool := mcp.NewTool("timeline_stats",
		mcp.WithDescription("Get timeline statistics: total days, recorded days, today's day index."),
	)

	s.AddTool(statsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days, err := service.Timeline("merged")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to build timeline: %v", err)), nil
		}
		recorded := 0
		for _, d := range days {
			if d.HasMemory {
				recorded++
			}
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Day %d of the journey. %d/%d days carry a memory.",
			service.TodayIndex(), recorded, len(days),
		)), nil
	})

	// ---------------------------------------------------------
	// Tool: export_snapshot
	// ---------------------------------------------------------
	exportTool := mcp.NewTool("export_snapshot",
		mcp.WithDescription("Export the full local journal state as a portable JSON snapshot document."),
	)

	s.AddTool(exportTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, err := service.ExportSnapshot()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to export: %v", err)), nil
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode snapshot: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	// 启动 MCP Server (Stdio)
	log.SetOutput(os.Stderr)
	if err := server.ServeStdio(s); err != nil {
		log.Printf("Server error: %v", err)
	}
}
