package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	customjwt "github.com/magabrotheeeer/gym-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-portal/internal/lib/password"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	services "github.com/magabrotheeeer/gym-portal/internal/services/auth"
	"github.com/magabrotheeeer/gym-portal/internal/services/authorizer"
	"github.com/magabrotheeeer/gym-portal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID int64, username, role string) (string, error) {
	args := m.Called(userID, username, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

var redirects = services.Redirects{Home: "/", Dashboard: "/dashboard", Admin: "/admin"}

func newService(repo *UserRepoMock, j customjwt.Maker) *services.AuthService {
	return services.NewAuthService(repo, j, authorizer.New(authorizer.DefaultGrants()), redirects)
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	member := &models.User{ID: 1, Login: "abesuni", Email: "a@b.com", PasswordHash: hashedPassword, Role: models.RoleGymMember}
	trainer := &models.User{ID: 2, Login: "coach", PasswordHash: hashedPassword, Role: models.RoleGymTrainer}
	admin := &models.User{ID: 3, Login: "root", PasswordHash: hashedPassword, Role: models.RoleAdministrator}

	tests := []struct {
		name         string
		login        string
		password     string
		setupMocks   func(r *UserRepoMock, j *JwtMakerMock)
		wantRedirect string
		wantCodes    errcode.List
		wantErr      string
	}{
		{
			name:     "member goes home",
			login:    "Abe Suni",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "abesuni").Return(member, nil).Once()
				j.On("GenerateToken", int64(1), "abesuni", "gym_member").Return("jwt-token-123", nil).Once()
			},
			wantRedirect: "/",
		},
		{
			name:     "login by email",
			login:    " A@B.com ",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "a@b.com").Return(member, nil).Once()
				j.On("GenerateToken", int64(1), "abesuni", "gym_member").Return("jwt-token-123", nil).Once()
			},
			wantRedirect: "/",
		},
		{
			name:     "trainer goes to dashboard",
			login:    "coach",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "coach").Return(trainer, nil).Once()
				j.On("GenerateToken", int64(2), "coach", "gym_trainer").Return("jwt-token-123", nil).Once()
			},
			wantRedirect: "/dashboard",
		},
		{
			name:     "administrator goes to admin",
			login:    "root",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "root").Return(admin, nil).Once()
				j.On("GenerateToken", int64(3), "root", "administrator").Return("jwt-token-123", nil).Once()
			},
			wantRedirect: "/admin",
		},
		{
			name:       "empty fields",
			login:      " ",
			password:   "",
			setupMocks: func(*UserRepoMock, *JwtMakerMock) {},
			wantCodes:  errcode.List{errcode.EmptyField},
		},
		{
			name:     "user not found",
			login:    "nobody",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "nobody").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantCodes: errcode.List{errcode.InvalidCredentials},
		},
		{
			name:     "wrong password",
			login:    "abesuni",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "abesuni").Return(member, nil).Once()
			},
			wantCodes: errcode.List{errcode.IncorrectPassword},
		},
		{
			name:     "repository error",
			login:    "abesuni",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "abesuni").Return(nil, errors.New("db error")).Once()
			},
			wantErr: "db error",
		},
		{
			name:     "token generation error",
			login:    "abesuni",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByLogin", mock.Anything, "abesuni").Return(member, nil).Once()
				j.On("GenerateToken", int64(1), "abesuni", "gym_member").Return("", errors.New("token error")).Once()
			},
			wantErr: "token error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, jwtMock)

			tt.setupMocks(repo, jwtMock)

			res, err := svc.Login(context.Background(), tt.login, tt.password)
			switch {
			case tt.wantCodes != nil:
				require.Error(t, err)
				assert.Equal(t, tt.wantCodes, errcode.FromError(err))
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, errcode.List{errcode.Unknown}, errcode.FromError(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, "jwt-token-123", res.Token)
				assert.Equal(t, tt.wantRedirect, res.RedirectTo)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	jwtMock := new(JwtMakerMock)
	jwtMock.On("ParseToken", "good").Return(&customjwt.CustomClaims{UserID: 5, Username: "coach", Role: "gym_trainer"}, nil).Once()
	jwtMock.On("ParseToken", "bad").Return(nil, errors.New("token is malformed")).Once()
	svc := newService(new(UserRepoMock), jwtMock)

	actor, err := svc.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &models.Actor{UserID: 5, Login: "coach", Role: models.RoleGymTrainer}, actor)

	_, err = svc.ValidateToken(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services.ValidateToken")

	jwtMock.AssertExpectations(t)
}
