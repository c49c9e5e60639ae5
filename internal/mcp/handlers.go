package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/manual-copilot/internal/manuals"
)

const snippetLen = 300

// makeSearchHandler creates the search_manuals tool handler. The merge
// policy (unit scoping, cross-manual fallback, dedup, cap) lives in the
// retriever; this handler only shapes the output.
func makeSearchHandler(retriever Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchManualsInput,
) (*mcp.CallToolResult, SearchManualsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchManualsInput) (
		*mcp.CallToolResult, SearchManualsOutput, error,
	) {
		records, crossRef, err := retriever.Retrieve(ctx, input.Query)
		if err != nil {
			return nil, SearchManualsOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]ManualHit, 0, len(records))
		for _, r := range records {
			snippet := r.Text
			if runes := []rune(snippet); len(runes) > snippetLen {
				snippet = string(runes[:snippetLen])
			}
			results = append(results, ManualHit{
				UnitNumber: r.UnitNumber,
				Filename:   r.Filename,
				Page:       r.Page,
				Snippet:    snippet,
				Distance:   r.Distance,
			})
		}

		out := SearchManualsOutput{Results: results, CrossRef: crossRef}
		if len(results) == 0 {
			out.Message = "No matching manual content found. Try broader search terms or check the unit number."
		}
		return nil, out, nil
	}
}

// makeListHandler creates the list_manuals tool handler.
func makeListHandler(registry *manuals.Registry) func(
	context.Context, *mcp.CallToolRequest, ListManualsInput,
) (*mcp.CallToolResult, ListManualsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListManualsInput) (
		*mcp.CallToolResult, ListManualsOutput, error,
	) {
		list, err := registry.List()
		if err != nil {
			return nil, ListManualsOutput{}, fmt.Errorf("failed to list manuals: %w", err)
		}

		infos := make([]ManualInfo, 0, len(list))
		for _, m := range list {
			infos = append(infos, ManualInfo{
				UnitNumber: m.UnitNumber,
				Filename:   m.Filename,
				PageCount:  m.PageCount,
				UploadedAt: m.UploadedAt,
			})
		}
		return nil, ListManualsOutput{Manuals: infos, Count: len(infos)}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(units UnitLister, registry *manuals.Registry) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		indexed, err := units.ListUnits(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to list indexed units: %w", err)
		}
		registered, err := registry.List()
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to list manuals: %w", err)
		}
		if indexed == nil {
			indexed = []string{}
		}
		return nil, IndexStatusOutput{
			IndexedUnits:    indexed,
			RegisteredCount: len(registered),
		}, nil
	}
}
