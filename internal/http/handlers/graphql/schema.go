package graphql

import (
	"context"
	"log/slog"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	"github.com/magabrotheeeer/gym-portal/internal/services/account"
)

// Service описывает операции над участниками спортзала.
type Service interface {
	Register(ctx context.Context, req account.RegisterRequest) (*models.GymUser, error)
	Update(ctx context.Context, actor *models.Actor, userID int64, data map[string]string) (*models.GymUser, error)
	GymUser(ctx context.Context, actor *models.Actor, userID int64) (*models.GymUser, error)
}

// codedError — ошибка резолвера с кодами каталога в extensions.
type codedError struct {
	codes errcode.List
}

func (e codedError) Error() string {
	return e.codes.Error()
}

// Extensions попадает в поле extensions ответа GraphQL.
func (e codedError) Extensions() map[string]any {
	return map[string]any{
		"codes":    e.codes.Strings(),
		"messages": e.codes.Messages(),
	}
}

var gymRolesEnum = graphql.NewEnum(graphql.EnumConfig{
	Name:        "GymRolesEnum",
	Description: "List of available gym roles",
	Values: graphql.EnumValueConfigMap{
		"GYM_MEMBER":  &graphql.EnumValueConfig{Value: string(models.RoleGymMember)},
		"GYM_TRAINER": &graphql.EnumValueConfig{Value: string(models.RoleGymTrainer)},
		"GYM_ADMIN":   &graphql.EnumValueConfig{Value: string(models.RoleGymAdmin)},
	},
})

var presetsEnum = graphql.NewEnum(graphql.EnumConfig{
	Name:        "MembershipDurationPresetsEnum",
	Description: "Membership duration presets. Will be added to current date",
	Values: graphql.EnumValueConfigMap{
		string(models.PresetThirtyDays): &graphql.EnumValueConfig{Value: string(models.PresetThirtyDays)},
		string(models.PresetNinetyDays): &graphql.EnumValueConfig{Value: string(models.PresetNinetyDays)},
		string(models.PresetHalfYear):   &graphql.EnumValueConfig{Value: string(models.PresetHalfYear)},
		string(models.PresetOneYear):    &graphql.EnumValueConfig{Value: string(models.PresetOneYear)},
	},
})

var gymUserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GymUser",
	Fields: graphql.Fields{
		"userId":              &graphql.Field{Type: graphql.Int},
		"login":               &graphql.Field{Type: graphql.String},
		"full_name":           &graphql.Field{Type: graphql.String},
		"is_student":          &graphql.Field{Type: graphql.Int, Description: "1 or 0"},
		"branch":              &graphql.Field{Type: graphql.String},
		"gym_role":            &graphql.Field{Type: gymRolesEnum},
		"membership_duration": &graphql.Field{Type: graphql.String, Description: "Expiry date in YYYYMMDD format"},
	},
})

var createInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateGymUserInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"username":                     &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "Login, defaults to full_name"},
		"email":                        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"password":                     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"full_name":                    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"membership_duration_preset":   &graphql.InputObjectFieldConfig{Type: presetsEnum},
		"membership_duration_specific": &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "ISO date when the membership should end"},
		"is_student":                   &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"branch":                       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"gym_role":                     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var updateInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateGymUserInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"userId":              &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"full_name":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		"membership_duration": &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "Preset name or ISO date"},
	},
})

type resolver struct {
	log     *slog.Logger
	service Service
}

// NewSchema собирает схему с запросом gymUser и мутациями createGymUser и updateGymUser.
func NewSchema(log *slog.Logger, service Service) (graphql.Schema, error) {
	r := &resolver{log: log, service: service}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"gymUser": &graphql.Field{
				Type: gymUserType,
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.gymUser,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createGymUser": &graphql.Field{
				Type: gymUserType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInputType)},
				},
				Resolve: r.createGymUser,
			},
			"updateGymUser": &graphql.Field{
				Type: gymUserType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateInputType)},
				},
				Resolve: r.updateGymUser,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func (r *resolver) gymUser(p graphql.ResolveParams) (any, error) {
	userID, _ := p.Args["userId"].(int)
	user, err := r.service.GymUser(p.Context, middlewarectx.ActorFrom(p.Context), int64(userID))
	if err != nil {
		return nil, r.toError("graphql.gymUser", err)
	}
	return gymUserMap(user), nil
}

func (r *resolver) createGymUser(p graphql.ResolveParams) (any, error) {
	input, _ := p.Args["input"].(map[string]any)

	var c models.Candidate
	if v, ok := nonEmpty(input, "full_name"); ok {
		c.FullName = &v
		c.Username = v
	}
	if v, ok := nonEmpty(input, "username"); ok {
		c.Username = v
	}
	if v, ok := nonEmpty(input, "email"); ok {
		c.Email = &v
	}
	if v, ok := nonEmpty(input, "password"); ok {
		c.Password = &v
	}
	if v, ok := nonEmpty(input, "branch"); ok {
		c.Branch = &v
	}
	if v, ok := input["is_student"].(bool); ok {
		c.IsStudent = &v
	}
	if v, ok := nonEmpty(input, "membership_duration_preset"); ok {
		preset := models.Preset(v)
		c.MembershipDurationPreset = &preset
	}
	if v, ok := nonEmpty(input, "membership_duration_specific"); ok {
		c.MembershipDurationSpecific = &v
	}
	role, _ := nonEmpty(input, "gym_role")

	user, err := r.service.Register(p.Context, account.RegisterRequest{
		Actor:     middlewarectx.ActorFrom(p.Context),
		Candidate: c,
		Role:      models.ParseRole(role),
		Channel:   account.ChannelGraphQL,
	})
	if err != nil {
		return nil, r.toError("graphql.createGymUser", err)
	}
	return gymUserMap(user), nil
}

func (r *resolver) updateGymUser(p graphql.ResolveParams) (any, error) {
	input, _ := p.Args["input"].(map[string]any)
	userID, _ := input["userId"].(int)

	data := make(map[string]string, len(models.EditableFields))
	for _, key := range models.EditableFields {
		if v, ok := nonEmpty(input, key); ok {
			data[key] = v
		}
	}

	user, err := r.service.Update(p.Context, middlewarectx.ActorFrom(p.Context), int64(userID), data)
	if err != nil {
		return nil, r.toError("graphql.updateGymUser", err)
	}
	return gymUserMap(user), nil
}

// toError превращает ошибку сервиса в ошибку GraphQL. Внутренние ошибки не раскрываются.
func (r *resolver) toError(op string, err error) error {
	codes := errcode.FromError(err)
	if codes.Has(errcode.Unknown) {
		r.log.Error("resolver failed", slog.String("op", op), sl.Err(err))
	}
	return codedError{codes: codes}
}

func nonEmpty(input map[string]any, key string) (string, bool) {
	v, ok := input[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func gymUserMap(u *models.GymUser) map[string]any {
	m := map[string]any{
		"userId":              u.UserID,
		"login":               u.Login,
		"full_name":           u.FullName,
		"is_student":          u.IsStudent,
		"branch":              u.Branch,
		"membership_duration": u.MembershipDuration,
	}
	if u.GymRole != "" {
		m["gym_role"] = u.GymRole
	}
	return m
}
