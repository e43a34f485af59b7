package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/pixelrelay/image-convert/batch"
	"github.com/pixelrelay/image-convert/internal/converter"
	"github.com/pixelrelay/image-convert/internal/global"
	"github.com/pixelrelay/image-convert/internal/presets"
)

// Run serves the conversion tools over MCP on stdio. It blocks until the
// client disconnects or gCtx is cancelled.
func Run(gCtx global.Context) error {
	s := server.NewMCPServer(
		"image-convert",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(singleTool(), handleSingle(gCtx))
	s.AddTool(batchTool(), handleBatch(gCtx))
	s.AddTool(listPresetsTool(), handleListPresets())

	zap.S().Infow("MCP server listening on stdio")

	return server.ServeStdio(s)
}

func conversionOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("output_dir",
			mcp.Description("Directory for the converted files (default: alongside the input)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("webp", "avif", "both"),
			mcp.DefaultString("both"),
		),
		mcp.WithNumber("webp_quality",
			mcp.Description("WebP quality, 1-100"),
			mcp.DefaultNumber(80),
		),
		mcp.WithNumber("avif_quality",
			mcp.Description("AVIF quality, 1-100"),
			mcp.DefaultNumber(50),
		),
		mcp.WithBoolean("lossless",
			mcp.Description("Lossless WebP encoding"),
		),
		mcp.WithNumber("max_width",
			mcp.Description("Maximum output width, aspect ratio is preserved"),
		),
		mcp.WithNumber("max_height",
			mcp.Description("Maximum output height, aspect ratio is preserved"),
		),
		mcp.WithString("preset",
			mcp.Description("Named preset, overrides the quality and size options"),
		),
		mcp.WithBoolean("stats",
			mcp.Description("Include compression statistics in the result"),
		),
	}
}

func singleTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Convert a single image to WebP and/or AVIF"),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Path of the image to convert"),
		),
	}
	opts = append(opts, conversionOptions()...)

	return mcp.NewTool("convert_image_single", opts...)
}

func batchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Convert every supported image in a directory to WebP and/or AVIF"),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Directory containing the images to convert"),
		),
		mcp.WithNumber("workers",
			mcp.Description("Parallel workers (default: CPU count)"),
		),
	}
	opts = append(opts, conversionOptions()...)

	return mcp.NewTool("convert_image_batch", opts...)
}

func listPresetsTool() mcp.Tool {
	return mcp.NewTool("list_presets",
		mcp.WithDescription("List the available conversion presets"),
	)
}

func requestFrom(req mcp.CallToolRequest) (batch.Request, error) {
	inputPath, err := req.RequireString("input_path")
	if err != nil {
		return batch.Request{}, err
	}

	return batch.Request{
		InputPath:   inputPath,
		OutputDir:   req.GetString("output_dir", ""),
		Format:      req.GetString("format", "both"),
		WebpQuality: req.GetInt("webp_quality", 0),
		AvifQuality: req.GetInt("avif_quality", 0),
		Lossless:    req.GetBool("lossless", false),
		MaxWidth:    req.GetInt("max_width", 0),
		MaxHeight:   req.GetInt("max_height", 0),
		Workers:     req.GetInt("workers", 0),
		Preset:      req.GetString("preset", ""),
		Stats:       req.GetBool("stats", false),
	}, nil
}

func handleSingle(gCtx global.Context) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := requestFrom(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cfg, err := r.Resolve()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := converter.ConvertFile(gCtx, r.InputPath, cfg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return itemsResult([]batch.Item{batch.ItemFromResult(result, r.Stats)})
	}
}

func handleBatch(gCtx global.Context) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := requestFrom(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cfg, err := r.Resolve()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info, err := os.Stat(r.InputPath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if !info.IsDir() {
			return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", r.InputPath)), nil
		}

		results, err := converter.ConvertDirectory(gCtx, r.InputPath, cfg, r.Workers)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return itemsResult(batch.ItemsFromResults(results, r.Stats))
	}
}

func handleListPresets() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.MarshalIndent(presets.List(), "", "  ")
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(string(b)), nil
	}
}

func itemsResult(items []batch.Item) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(b)), nil
}
