package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/auth"
	"github.com/lk2023060901/kidlingo/app/learner/internal/form"
	"github.com/lk2023060901/kidlingo/app/learner/internal/testkit"
	"github.com/lk2023060901/kidlingo/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := testkit.New(t)
	_, err := env.Backend.CreateUser("bin@kid.vn", testkit.Password, "Bin")
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name      string
		form      auth.LoginForm
		wantForm  bool
		wantMark  error
		wantToken bool
	}{
		{name: "missing fields", form: auth.LoginForm{}, wantForm: true},
		{name: "wrong password", form: auth.LoginForm{Email: "bin@kid.vn", Password: "nope"}, wantMark: auth.ErrWrongCredentials},
		{name: "unknown email", form: auth.LoginForm{Email: "who@kid.vn", Password: "nope"}, wantMark: auth.ErrWrongCredentials},
		{name: "ok", form: auth.LoginForm{Email: "bin@kid.vn", Password: testkit.Password}, wantToken: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, env.Auth.Logout(ctx))
			err := env.Auth.Login(ctx, tt.form)
			switch {
			case tt.wantForm:
				var fe *form.Error
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "Vui lòng nhập Email", fe.Fields["email"])
				assert.Equal(t, "Vui lòng nhập mật khẩu", fe.Fields["password"])
			case tt.wantMark != nil:
				require.True(t, errors.Is(err, tt.wantMark), "%+v", err)
				assert.Equal(t, "Email hoặc mật khẩu chưa đúng bé ơi!", api.UserMessage(err))
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantToken, env.Auth.Authenticated(ctx))
			assert.False(t, env.Auth.Expired())
		})
	}
}

func TestRegister(t *testing.T) {
	env := testkit.New(t)
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, auth.RegisterForm{FullName: "Bin", Email: "not-an-email", Password: "123"})
	var fe *form.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Email chưa đúng định dạng", fe.Fields["email"])
	assert.Equal(t, "Mật khẩu ít nhất 6 ký tự nha", fe.Fields["password"])

	user, err := env.Auth.Register(ctx, auth.RegisterForm{FullName: "Bin", Email: "bin@kid.vn", Password: testkit.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ReferralCode)
	assert.True(t, env.Auth.Authenticated(ctx))

	// 使用邀请码注册，双方各得 100 宝石
	require.NoError(t, env.Auth.Logout(ctx))
	_, err = env.Auth.Register(ctx, auth.RegisterForm{FullName: "Na", Email: "na@kid.vn", Password: testkit.Password, RefCode: user.ReferralCode})
	require.NoError(t, err)
	assert.Equal(t, 100, env.Backend.Gems(user.ID))

	_, err = env.Auth.Register(ctx, auth.RegisterForm{FullName: "Bin", Email: "bin@kid.vn", Password: testkit.Password})
	require.True(t, errors.Is(err, auth.ErrEmailTaken), "%+v", err)
	assert.Equal(t, "Email này đã được đăng ký rồi bé ơi!", api.UserMessage(err))
}

func TestRequire(t *testing.T) {
	env := testkit.New(t)
	ctx := context.Background()
	require.True(t, errors.Is(env.Auth.Require(ctx), auth.ErrLoginRequired))

	env.Login(t, "bin@kid.vn")
	require.NoError(t, env.Auth.Require(ctx))

	require.NoError(t, env.Auth.Logout(ctx))
	require.True(t, errors.Is(env.Auth.Require(ctx), auth.ErrLoginRequired))
	assert.Equal(t, "Bé", env.Store.Snapshot().FullName)
}

func TestSessionExpiry(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	ctx := context.Background()

	// 另一把密钥签发的令牌：本地看未过期，服务端校验失败返回 401
	other, err := security.NewJWTManager(&security.JWTConfig{SecretKey: "someone-else", ExpiresIn: time.Hour})
	require.NoError(t, err)
	forged, _, err := other.Generate("1")
	require.NoError(t, err)
	require.NoError(t, env.Sessions.Set(ctx, forged))

	_, err = env.Profile.Refresh(ctx)
	require.True(t, errors.Is(err, api.ErrUnauthorized), "%+v", err)
	assert.True(t, env.Auth.Expired())
	assert.False(t, env.Auth.Authenticated(ctx))
	assert.Equal(t, "Bé", env.Store.Snapshot().FullName)

	env.Auth.AcknowledgeExpiry()
	assert.False(t, env.Auth.Expired())

	require.NoError(t, env.Auth.Login(ctx, auth.LoginForm{Email: "bin@kid.vn", Password: testkit.Password}))
	_, err = env.Profile.Refresh(ctx)
	require.NoError(t, err)
}
