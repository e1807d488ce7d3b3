// Package apidocs builds the OpenAPI description of the public HTTP API.
package apidocs

import (
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	openAPIVersion = "3.0.3"
	bearerScheme   = "bearerAuth"
	schemaPrefix   = "#/components/schemas/"
)

// Build returns the API document for the given service version
func Build(version string) *openapi3.T {
	b := newBuilder(version)

	login := b.body("UserLoginRequest", required(openapi3.NewObjectSchema().
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password")),
		"email", "password"))
	userDetails := b.body("UserDetailsRequest", required(openapi3.NewObjectSchema().
		WithProperty("firstName", openapi3.NewStringSchema().WithMaxLength(50)).
		WithProperty("lastName", openapi3.NewStringSchema().WithMaxLength(50)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password")),
		"firstName", "email", "password"))
	userUpdate := b.body("UserUpdateRequest", required(openapi3.NewObjectSchema().
		WithProperty("firstName", openapi3.NewStringSchema().WithMaxLength(50)).
		WithProperty("lastName", openapi3.NewStringSchema().WithMaxLength(50)),
		"firstName"))
	cityRequest := b.body("CityRequest", citySchema(false))

	user := b.schema("User", openapi3.NewObjectSchema().
		WithProperty("userId", openapi3.NewStringSchema()).
		WithProperty("firstName", openapi3.NewStringSchema()).
		WithProperty("lastName", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()))
	city := b.schema("City", citySchema(true))
	status := b.schema("OperationStatus", openapi3.NewObjectSchema().
		WithProperty("operationName", openapi3.NewStringSchema()).
		WithProperty("operationResult", openapi3.NewStringSchema()))
	uploadResult := b.schema("FileUploadResponse", openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()))
	apiError := b.schema("Error", openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewObjectSchema()))

	users := openapi3.NewArraySchema().WithItems(user.Value)
	cities := openapi3.NewArraySchema().WithItems(city.Value)

	// users
	b.op(http.MethodPost, "/users/login", "Log in", false, login, nil,
		resp(http.StatusOK, "Token in the Authorization header, public user id in the UserID header", nil),
		resp(http.StatusBadRequest, "Malformed request", apiError),
		resp(http.StatusUnauthorized, "Invalid credentials", apiError))
	b.op(http.MethodPost, "/users", "Sign up", false, userDetails, nil,
		resp(http.StatusCreated, "Created user", user),
		resp(http.StatusBadRequest, "Invalid user", apiError),
		resp(http.StatusConflict, "Email already registered", apiError))
	b.op(http.MethodGet, "/users", "List users", true, nil,
		openapi3.Parameters{
			{Value: openapi3.NewQueryParameter("page").WithSchema(openapi3.NewIntegerSchema().WithMin(0))},
			{Value: openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewIntegerSchema().WithMin(1).WithMax(100))},
		},
		resp(http.StatusOK, "Page of users", &openapi3.SchemaRef{Value: users}))
	b.op(http.MethodPost, "/users/random", "Create a random user", true, nil, nil,
		resp(http.StatusCreated, "Created user", user))
	b.op(http.MethodGet, "/users/{id}", "Get user", true, nil, pathID(openapi3.NewStringSchema()),
		resp(http.StatusOK, "User", user),
		resp(http.StatusNotFound, "User not found", apiError))
	b.op(http.MethodPut, "/users/{id}", "Update user", true, userUpdate, pathID(openapi3.NewStringSchema()),
		resp(http.StatusOK, "Updated user", user),
		resp(http.StatusBadRequest, "Invalid user", apiError),
		resp(http.StatusNotFound, "User not found", apiError))
	b.op(http.MethodDelete, "/users/{id}", "Delete user", true, nil, pathID(openapi3.NewStringSchema()),
		resp(http.StatusOK, "Operation status", status),
		resp(http.StatusNotFound, "User not found", apiError))

	// cities
	b.op(http.MethodGet, "/city", "List cities", true, nil, nil,
		resp(http.StatusOK, "Cities", &openapi3.SchemaRef{Value: cities}))
	b.op(http.MethodPost, "/city/newCity", "Create city", true, cityRequest, nil,
		resp(http.StatusCreated, "Created city", city),
		resp(http.StatusBadRequest, "Invalid city", apiError))
	b.op(http.MethodPost, "/city/newRandomCity", "Create a random city", true, nil, nil,
		resp(http.StatusCreated, "Created city", city))
	b.op(http.MethodGet, "/city/{id}", "Get city", true, nil, pathID(openapi3.NewInt64Schema()),
		resp(http.StatusOK, "City", city),
		resp(http.StatusNotFound, "City not found", apiError))
	b.op(http.MethodPut, "/city/{id}", "Update city", true, cityRequest, pathID(openapi3.NewInt64Schema()),
		resp(http.StatusOK, "Updated city", city),
		resp(http.StatusNotFound, "City not found", apiError))
	b.op(http.MethodDelete, "/city/{id}", "Delete city", true, nil, pathID(openapi3.NewInt64Schema()),
		resp(http.StatusOK, "Operation status", status),
		resp(http.StatusNotFound, "City not found", apiError))

	upload := openapi3.NewRequestBody().WithRequired(true).WithContent(openapi3.Content{
		"multipart/form-data": openapi3.NewMediaType().WithSchema(openapi3.NewObjectSchema().
			WithProperty("file", openapi3.NewStringSchema().WithFormat("binary"))),
	})
	b.op(http.MethodPost, "/city/upload", "Upload a file", true, &openapi3.RequestBodyRef{Value: upload}, nil,
		resp(http.StatusOK, "Stored", uploadResult),
		resp(http.StatusExpectationFailed, "Could not store the file", uploadResult))

	// health
	b.op(http.MethodGet, "/healthz", "Liveness", false, nil, nil,
		resp(http.StatusOK, "Service is running", nil))
	b.op(http.MethodGet, "/readyz", "Readiness", false, nil, nil,
		resp(http.StatusOK, "Dependencies available", nil),
		resp(http.StatusServiceUnavailable, "A dependency is unavailable", nil))

	return b.doc
}

type response struct {
	status      int
	description string
	schema      *openapi3.SchemaRef
}

func resp(status int, description string, schema *openapi3.SchemaRef) response {
	return response{status: status, description: description, schema: schema}
}

func pathID(schema *openapi3.Schema) openapi3.Parameters {
	return openapi3.Parameters{
		{Value: openapi3.NewPathParameter("id").WithSchema(schema)},
	}
}

func citySchema(withID bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	if withID {
		s = s.WithProperty("id", openapi3.NewInt64Schema())
	}
	return s.
		WithProperty("latD", openapi3.NewIntegerSchema().WithMin(0).WithMax(90)).
		WithProperty("ns", openapi3.NewStringSchema().WithMaxLength(2)).
		WithProperty("longD", openapi3.NewIntegerSchema().WithMin(0).WithMax(180)).
		WithProperty("ew", openapi3.NewStringSchema().WithMaxLength(2)).
		WithProperty("city", openapi3.NewStringSchema().WithMaxLength(100)).
		WithProperty("state", openapi3.NewStringSchema().WithMaxLength(100))
}

type builder struct {
	doc *openapi3.T
}

func newBuilder(version string) *builder {
	return &builder{doc: &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:       "core-platform API",
			Description: "Cities, users and file uploads behind bearer token authentication",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}}
}

// schema registers a component schema and returns a reference to it
func (b *builder) schema(name string, s *openapi3.Schema) *openapi3.SchemaRef {
	b.doc.Components.Schemas[name] = openapi3.NewSchemaRef("", s)
	return openapi3.NewSchemaRef(schemaPrefix+name, s)
}

// body registers a component schema and returns a JSON request body using it
func (b *builder) body(name string, s *openapi3.Schema) *openapi3.RequestBodyRef {
	ref := b.schema(name, s)
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
}

func (b *builder) op(method, path, summary string, protected bool, body *openapi3.RequestBodyRef, params openapi3.Parameters, responses ...response) {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.RequestBody = body
	op.Parameters = params
	op.Responses = &openapi3.Responses{}
	for _, r := range responses {
		rsp := openapi3.NewResponse().WithDescription(r.description)
		if r.schema != nil {
			rsp = rsp.WithJSONSchemaRef(r.schema)
		}
		op.Responses.Set(statusKey(r.status), &openapi3.ResponseRef{Value: rsp})
	}
	if protected {
		op.Security = openapi3.NewSecurityRequirements().
			With(openapi3.NewSecurityRequirement().Authenticate(bearerScheme))
		op.Responses.Set(statusKey(http.StatusUnauthorized), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Missing, invalid or expired token"),
		})
	}
	b.doc.AddOperation(path, method, op)
}

func statusKey(status int) string {
	return strconv.Itoa(status)
}

func required(s *openapi3.Schema, fields ...string) *openapi3.Schema {
	s.Required = fields
	return s
}
