package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/fedash/pkg/session"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerLoginTool(srv, svc)
	registerLogoutTool(srv, svc)
	registerSessionTool(srv, svc)
	registerSelectContextTool(srv, svc)
	registerSelectCollectionTool(srv, svc)
	registerListProjectsTool(srv, svc)
	registerCreateRecordTool(srv, svc)
	registerReadRecordTool(srv, svc)
	registerUpdateRecordTool(srv, svc)
	registerDeleteRecordTool(srv, svc)
	registerTransferDataTool(srv, svc)
}

func registerLoginTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"login",
		mcp.WithDescription("Log in to DataFed and discover the available contexts."),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("DataFed user id."),
		),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("DataFed password."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username := request.GetString("username", "")
		password := request.GetString("password", "")
		view, err := svc.Login(ctx, username, password)
		if err != nil {
			return mcp.NewToolResultError(view.Session.Status), nil
		}
		return toJSONResult(view)
	})
}

func registerLogoutTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"logout",
		mcp.WithDescription("Log out and reset the session."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.Logout(ctx))
	})
}

func registerSessionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"session",
		mcp.WithDescription("Show the current user, contexts, collections and last result."),
	)

	srv.AddTool(tool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.Session())
	})
}

func registerSelectContextTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"select_context",
		mcp.WithDescription("Select one of the available contexts and list its collections."),
		mcp.WithString("context",
			mcp.Required(),
			mcp.Description("Context (project id) to select."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("context")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view, err := svc.SelectContext(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(view)
	})
}

func registerSelectCollectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"select_collection",
		mcp.WithDescription("Select one of the collections of the selected context."),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection id to select."),
		),
	)

	srv.AddTool(tool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("collection")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view, err := svc.SelectCollection(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(view)
	})
}

func registerListProjectsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_projects",
		mcp.WithDescription("List the projects visible to the logged in user."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r := svc.Projects(ctx)
		if !r.OK() {
			return mcp.NewToolResultError(r.Message), nil
		}
		return toJSONResult(r.Payload)
	})
}

func registerCreateRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_record",
		mcp.WithDescription("Create a data record in the selected context."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Record title."),
		),
		mcp.WithString("metadata",
			mcp.Required(),
			mcp.Description("Metadata as a JSON document."),
		),
		mcp.WithString("parent",
			mcp.Description("Parent collection id. Defaults to the selected collection."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r := svc.Create(ctx,
			request.GetString("title", ""),
			request.GetString("metadata", ""),
			request.GetString("parent", ""),
		)
		return resultToTool(r)
	})
}

func registerReadRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"read_record",
		mcp.WithDescription("Read a data record."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record id, with or without the d/ prefix."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return resultToTool(svc.Read(ctx, request.GetString("id", "")))
	})
}

func registerUpdateRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_record",
		mcp.WithDescription("Replace the metadata of a data record."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record id, with or without the d/ prefix."),
		),
		mcp.WithString("metadata",
			mcp.Required(),
			mcp.Description("New metadata as a JSON document."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r := svc.Update(ctx, request.GetString("id", ""), request.GetString("metadata", ""))
		return resultToTool(r)
	})
}

func registerDeleteRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_record",
		mcp.WithDescription("Delete a data record."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record id, with or without the d/ prefix."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return resultToTool(svc.Delete(ctx, request.GetString("id", "")))
	})
}

func registerTransferDataTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"transfer_data",
		mcp.WithDescription("Copy a record into another collection and move the source onto the copy."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source record id."),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("Destination collection id."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r := svc.Transfer(ctx, request.GetString("source", ""), request.GetString("destination", ""))
		return resultToTool(r)
	})
}

// resultToTool reports warnings and errors as tool errors and successes as
// JSON.
func resultToTool(r session.Result) (*mcp.CallToolResult, error) {
	if !r.OK() {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", r.Kind, r.Message)), nil
	}
	return toJSONResult(r)
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
