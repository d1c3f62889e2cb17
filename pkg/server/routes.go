package server

import (
	"context"
	"net/http"

	"github.com/ajitpratap0/metactx/pkg/api"
)

func (s *Server) register(mux *http.ServeMux) {
	const base = "POST " + api.BasePath
	c := s.client

	mux.Handle(base+"elements", operation(s, "createElement",
		func(ctx context.Context, _ *http.Request, user string, req *api.CreateElementRequest) (interface{}, error) {
			guid, err := c.CreateElement(ctx, user, req.TypeName, req.Options, req.Properties)
			return &api.GUIDResponse{GUID: guid}, err
		}))

	mux.Handle(base+"elements/from-template", operation(s, "createElementFromTemplate",
		func(ctx context.Context, _ *http.Request, user string, req *api.TemplateRequest) (interface{}, error) {
			guid, err := c.CreateElementFromTemplate(ctx, user, req.TypeName, req.Options, req.TemplateGUID,
				req.ReplacementProperties, req.PlaceholderProperties)
			return &api.GUIDResponse{GUID: guid}, err
		}))

	mux.Handle(base+"elements/by-property-value", operation(s, "getElementsByPropertyValue",
		func(ctx context.Context, _ *http.Request, user string, req *api.PropertyValueRequest) (interface{}, error) {
			elements, err := c.GetElementsByPropertyValue(ctx, user, req.Value, req.PropertyNames, req.Options)
			return &api.ElementsResponse{Elements: elements}, err
		}))

	mux.Handle(base+"elements/by-search-string", operation(s, "findElementsByPropertyValue",
		func(ctx context.Context, _ *http.Request, user string, req *api.SearchRequest) (interface{}, error) {
			elements, err := c.FindElementsByPropertyValue(ctx, user, req.SearchString, req.PropertyNames, req.Options)
			return &api.ElementsResponse{Elements: elements}, err
		}))

	mux.Handle(base+"elements/find", operation(s, "findElements",
		func(ctx context.Context, _ *http.Request, user string, req *api.SearchRequest) (interface{}, error) {
			elements, err := c.FindElements(ctx, user, req.SearchString, req.Options)
			return &api.ElementsResponse{Elements: elements}, err
		}))

	mux.Handle(base+"classifications/{name}/elements", operation(s, "getElementsByClassification",
		func(ctx context.Context, r *http.Request, user string, req *api.QueryRequest) (interface{}, error) {
			elements, err := c.GetElementsByClassification(ctx, user, r.PathValue("name"), req.Options)
			return &api.ElementsResponse{Elements: elements}, err
		}))

	mux.Handle(base+"elements/{guid}/update", operation(s, "updateElement",
		func(ctx context.Context, r *http.Request, user string, req *api.UpdateRequest) (interface{}, error) {
			return nil, c.UpdateElement(ctx, user, r.PathValue("guid"), req.Options, req.Properties)
		}))

	mux.Handle(base+"elements/{guid}/status", operation(s, "updateElementStatus",
		func(ctx context.Context, r *http.Request, user string, req *api.StatusRequest) (interface{}, error) {
			return nil, c.UpdateElementStatus(ctx, user, r.PathValue("guid"), req.Options, req.Status)
		}))

	mux.Handle(base+"elements/{guid}/delete", operation(s, "deleteElement",
		func(ctx context.Context, r *http.Request, user string, req *api.DeleteRequest) (interface{}, error) {
			return nil, c.DeleteElement(ctx, user, r.PathValue("guid"), req.Options)
		}))

	mux.Handle(base+"elements/{guid}/retrieve", operation(s, "getElementByGUID",
		func(ctx context.Context, r *http.Request, user string, req *api.QueryRequest) (interface{}, error) {
			element, err := c.GetElementByGUID(ctx, user, r.PathValue("guid"), req.Options)
			return &api.ElementResponse{Element: element}, err
		}))

	mux.Handle(base+"elements/{guid}/related", operation(s, "getRelatedElements",
		func(ctx context.Context, r *http.Request, user string, req *api.RelatedRequest) (interface{}, error) {
			related, err := c.GetRelatedElements(ctx, user, r.PathValue("guid"), req.RelationshipTypeName, req.StartingAtEnd, req.Options)
			return &api.RelatedResponse{RelatedElements: related}, err
		}))

	mux.Handle(base+"elements/{guid}/classifications/{name}", operation(s, "classify",
		func(ctx context.Context, r *http.Request, user string, req *api.ClassifyRequest) (interface{}, error) {
			return nil, c.Classify(ctx, user, r.PathValue("guid"), r.PathValue("name"), req.Options, req.Properties)
		}))

	mux.Handle(base+"elements/{guid}/classifications/{name}/delete", operation(s, "declassify",
		func(ctx context.Context, r *http.Request, user string, req *api.SourceRequest) (interface{}, error) {
			return nil, c.Declassify(ctx, user, r.PathValue("guid"), r.PathValue("name"), req.Options)
		}))

	mux.Handle(base+"relationships", operation(s, "createRelationship",
		func(ctx context.Context, _ *http.Request, user string, req *api.RelationshipRequest) (interface{}, error) {
			guid, err := c.CreateRelationship(ctx, user, req.TypeName, req.End1GUID, req.End2GUID, req.Options, req.Properties)
			return &api.GUIDResponse{GUID: guid}, err
		}))

	mux.Handle(base+"relationships/detach", operation(s, "detachElements",
		func(ctx context.Context, _ *http.Request, user string, req *api.RelationshipRequest) (interface{}, error) {
			return nil, c.DetachElements(ctx, user, req.TypeName, req.End1GUID, req.End2GUID, req.Options)
		}))

	mux.Handle(base+"relationships/{guid}/update", operation(s, "updateRelationship",
		func(ctx context.Context, r *http.Request, user string, req *api.UpdateRequest) (interface{}, error) {
			return nil, c.UpdateRelationship(ctx, user, r.PathValue("guid"), req.Options, req.Properties)
		}))

	mux.Handle(base+"relationships/{guid}/delete", operation(s, "deleteRelationship",
		func(ctx context.Context, r *http.Request, user string, req *api.SourceRequest) (interface{}, error) {
			return nil, c.DeleteRelationship(ctx, user, r.PathValue("guid"), req.Options)
		}))

	mux.Handle(base+"relationships/{guid}/retrieve", operation(s, "getRelationshipByGUID",
		func(ctx context.Context, r *http.Request, user string, req *api.QueryRequest) (interface{}, error) {
			rel, err := c.GetRelationshipByGUID(ctx, user, r.PathValue("guid"), req.Options)
			return &api.RelationshipResponse{Relationship: rel}, err
		}))
}
