package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/swiftlab/routing"
	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/events"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/persistence"

	transHTTP "github.com/swiftlab/routing/transport/http"
)

var (
	Version   string = "0.0.0"
	BuildTime string
	GitCommit string
)

var versionCmd = &cli.Command{
	Name:    "version",
	Aliases: []string{"ver", "v"},
	Usage:   "Show version",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Show all information (include: Version, BuildTime, GitCommit)",
			Value:   false,
		},
	},
	Action: func(ctx *cli.Context) error {
		if !ctx.Bool("all") {
			fmt.Println(ctx.App.Version)
		} else {
			cli.ShowVersion(ctx)
		}
		return nil
	},
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Execute a complete routing run: generate, train, test, evaluate",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Value:   "routing-run",
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
		},
		&cli.IntFlag{
			Name:    "num-messages",
			Aliases: []string{"m"},
			Usage:   "Number of messages to generate",
		},
		&cli.BoolFlag{
			Name:  "train",
			Usage: "Train the model on the generated messages before testing",
			Value: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.CompleteRun(
			ctx.String("name"),
			ctx.String("description"),
			ctx.Int("num-messages"),
			ctx.Bool("train"),
		)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var generateCmd = &cli.Command{
	Name:  "generate",
	Usage: "Create a run and generate test messages for it",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Value:   "routing-run",
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
		},
		&cli.IntFlag{
			Name:    "num-messages",
			Aliases: []string{"m"},
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := svc.CreateRun(ctx.String("name"), ctx.String("description"))
		if err != nil {
			return err
		}

		messages, err := svc.GenerateMessages(run.ID, ctx.Int("num-messages"))
		if err != nil {
			return err
		}

		fmt.Printf("run %s: %d messages generated\n", run.ID, len(messages))
		return nil
	},
}

var trainCmd = &cli.Command{
	Name:  "train",
	Usage: "Train the routing model, from a run's messages or fresh template variations",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "run",
			Usage: "Train on this run's stored messages",
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		var runID *message.RunID
		if raw := ctx.String("run"); raw != "" {
			id, err := message.ParseRunID(raw)
			if err != nil {
				return err
			}
			runID = &id
		}

		metrics, err := svc.TrainModel(runID)
		if err != nil {
			return err
		}

		return printJSON(metrics)
	},
}

var testCmd = &cli.Command{
	Name:  "test",
	Usage: "Route a run's messages through the model and evaluate the results",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "run",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := message.ParseRunID(ctx.String("run"))
		if err != nil {
			return err
		}

		result, err := svc.TestModel(id)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var reportCmd = &cli.Command{
	Name:  "report",
	Usage: "Re-evaluate a tested run and write a fresh report",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "run",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := message.ParseRunID(ctx.String("run"))
		if err != nil {
			return err
		}

		result, err := svc.RunReport(id)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var routeCmd = &cli.Command{
	Name:  "route",
	Usage: "Route a single message: a stored one by ID, a file, or stdin",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "message",
			Usage: "Route a stored message by ID",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Route the message text in this file",
		},
	},
	Action: func(ctx *cli.Context) error {
		svc, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if raw := ctx.String("message"); raw != "" {
			id, err := message.ParseMessageID(raw)
			if err != nil {
				return err
			}

			routed, err := svc.RouteMessage(id)
			if err != nil {
				return err
			}

			return printJSON(routed)
		}

		var text []byte
		if file := ctx.String("file"); file != "" {
			text, err = os.ReadFile(file)
		} else {
			text, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		p, err := svc.Route(string(text))
		if err != nil {
			return err
		}

		return printJSON(p)
	},
}

var templatesCmd = &cli.Command{
	Name:  "templates",
	Usage: "Manage message templates",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List stored templates",
			Action: func(ctx *cli.Context) error {
				svc, cleanup, err := setup(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				templates, err := svc.ListTemplates()
				if err != nil {
					return err
				}

				return printJSON(templates)
			},
		},
		{
			Name:  "seed",
			Usage: "Store the builtin MT103/MT202/MT950 templates",
			Action: func(ctx *cli.Context) error {
				svc, cleanup, err := setup(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				return svc.SeedTemplates()
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a template by MT type",
			ArgsUsage: "mt_type",
			Action: func(ctx *cli.Context) error {
				svc, cleanup, err := setup(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				return svc.DeleteTemplate(ctx.Args().First())
			},
		},
	},
}

var serveCmd = &cli.Command{
	Name:   "serve",
	Usage:  "Serve the HTTP transport",
	Action: serve,
}

var refdataCmd = &cli.Command{
	Name:  "refdata",
	Usage: "Manage reference data used for message variation",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List stored reference data",
			Action: func(ctx *cli.Context) error {
				svc, cleanup, err := setup(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				data, err := svc.RefData()
				if err != nil {
					return err
				}

				return printJSON(data)
			},
		},
		{
			Name:  "seed",
			Usage: "Replace stored reference data with the builtin set",
			Action: func(ctx *cli.Context) error {
				svc, cleanup, err := setup(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				return svc.SeedRefData()
			},
		},
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "swiftroute",
		Usage:   "Routing test harness for SWIFT financial messages",
		Version: Version,
		Commands: []*cli.Command{
			versionCmd,
			runCmd,
			generateCmd,
			trainCmd,
			testCmd,
			reportCmd,
			routeCmd,
			templatesCmd,
			refdataCmd,
			serveCmd,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Specifies the working directory",
				EnvVars: []string{"SWIFTROUTE_PATH"},
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Specifies the HTTP service port",
				Value:   8080,
				EnvVars: []string{"SWIFTROUTE_HTTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "nats",
				EnvVars: []string{"NATS_URL"},
			},
		},
		Action: serve,
	}
}

func main() {
	cli.VersionPrinter = func(cli *cli.Context) {
		fmt.Println("Version: " + cli.App.Version)
		fmt.Println("BuildTime: " + BuildTime)
		fmt.Println("GitCommit: " + GitCommit)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads config, wires persistence, events and the service stack,
// and returns the service with a cleanup func.
func setup(cli *cli.Context) (routing.Service, func(), error) {
	if err := conf.LoadEnv(cli); err != nil {
		return nil, nil, err
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	conf.ReplaceGlobals(cfg)

	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(log)

	repo, err := persistence.NewRepository(cfg.Persistence)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)
		return nil, nil, err
	}

	if url := cli.String("nats"); url != "" {
		cfg.EventBus.Provider = conf.NATS
		cfg.EventBus.URL = url
	}

	pub, err := events.NewPublisher(cfg.EventBus)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	svc, err := routing.NewService(repo, pub, cfg)
	if err != nil {
		pub.Close()
		repo.Close()
		return nil, nil, err
	}
	svc = routing.LoggingMiddleware(log)(svc)

	cleanup := func() {
		svc.Close()
		log.Sync()
	}

	return svc, cleanup, nil
}

func serve(cli *cli.Context) error {
	svc, cleanup, err := setup(cli)
	if err != nil {
		return err
	}
	defer cleanup()

	endpoints := routing.EndpointSet{
		CreateRun:        routing.CreateRunEndpoint(svc),
		Run:              routing.RunEndpoint(svc),
		ListRuns:         routing.ListRunsEndpoint(svc),
		GenerateMessages: routing.GenerateMessagesEndpoint(svc),
		TrainModel:       routing.TrainModelEndpoint(svc),
		TestModel:        routing.TestModelEndpoint(svc),
		RunReport:        routing.RunReportEndpoint(svc),
		CompleteRun:      routing.CompleteRunEndpoint(svc),
		Route:            routing.RouteEndpoint(svc),
		RouteMessage:     routing.RouteMessageEndpoint(svc),
		SaveTemplate:     routing.SaveTemplateEndpoint(svc),
		Template:         routing.TemplateEndpoint(svc),
		ListTemplates:    routing.ListTemplatesEndpoint(svc),
		DeleteTemplate:   routing.DeleteTemplateEndpoint(svc),
	}

	log := zap.L()

	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))

	apiV1 := r.Group("/routing/v1")
	{
		// POST /runs
		apiV1.POST("/runs", transHTTP.CreateRunHandler(endpoints.CreateRun))

		// GET /runs
		apiV1.GET("/runs", transHTTP.ListRunsHandler(endpoints.ListRuns))

		// GET /runs/:run
		apiV1.GET("/runs/:run", transHTTP.RunHandler(endpoints.Run))

		// POST /runs/:run/messages
		apiV1.POST("/runs/:run/messages", transHTTP.GenerateMessagesHandler(endpoints.GenerateMessages))

		// POST /runs/:run/train
		apiV1.POST("/runs/:run/train", transHTTP.TrainModelHandler(endpoints.TrainModel))

		// POST /runs/:run/test
		apiV1.POST("/runs/:run/test", transHTTP.TestModelHandler(endpoints.TestModel))

		// GET /runs/:run/report
		apiV1.GET("/runs/:run/report", transHTTP.RunReportHandler(endpoints.RunReport))

		// POST /complete
		apiV1.POST("/complete", transHTTP.CompleteRunHandler(endpoints.CompleteRun))

		// POST /train
		apiV1.POST("/train", transHTTP.TrainModelHandler(endpoints.TrainModel))

		// POST /route
		apiV1.POST("/route", transHTTP.RouteHandler(endpoints.Route))

		// GET /messages/:message/route
		apiV1.GET("/messages/:message/route", transHTTP.RouteMessageHandler(endpoints.RouteMessage))

		// PUT /templates
		apiV1.PUT("/templates", transHTTP.SaveTemplateHandler(endpoints.SaveTemplate))

		// GET /templates
		apiV1.GET("/templates", transHTTP.ListTemplatesHandler(endpoints.ListTemplates))

		// GET /templates/:type
		apiV1.GET("/templates/:type", transHTTP.TemplateHandler(endpoints.Template))

		// DELETE /templates/:type
		apiV1.DELETE("/templates/:type", transHTTP.DeleteTemplateHandler(endpoints.DeleteTemplate))
	}

	go r.Run(":" + strconv.Itoa(conf.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("shutdown", zap.String("signal", sign.String()))
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
