package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/config"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/jobstate"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/queue"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	repository        *repository.Repository
	translator        ut.Translator
	solvePublisher    *queue.Publisher
	jobState          *jobstate.Store
	adminPasswordHash []byte

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, solvePublisher *queue.Publisher, state *jobstate.Store) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 管理员的密码只存在于配置中，启动时计算一次哈希，之后只比较哈希
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		repository:        repo,
		translator:        trans,
		solvePublisher:    solvePublisher,
		jobState:          state,
		adminPasswordHash: passwordHash,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/instances", func(r chi.Router) {
			r.Post("/", h.CreateInstance)
			r.Get("/", h.GetAllInstances)
			r.Post("/generate", h.GenerateInstance)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.instance)
				r.Get("/", h.GetInstance)
				r.Delete("/", h.DeleteInstance)
				r.Post("/solve", h.SolveInstance)
				r.Get("/jobs", h.GetInstanceJobs)
			})
		})

		r.Route("/jobs/{id}", func(r chi.Router) {
			r.Use(h.solveJob)
			r.Get("/", h.GetJob)
			r.Post("/cancel", h.CancelJob)
		})
	})
}
