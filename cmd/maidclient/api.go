package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"maidclient/internal/httpapi"
)

// serveAPI exposes the admin HTTP surface over an in-process vault group.
func serveAPI(ctx *cli.Context) error {
	cluster, err := newDemoCluster(ctx)
	if err != nil {
		return err
	}
	defer cluster.Close()

	addr := ctx.String("listen")
	logrus.WithField("addr", addr).Info("serving admin API")
	return http.ListenAndServe(addr, httpapi.New(cluster.Client).Router())
}
