package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/redis.v5"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/competingrisk"
	"github.com/pbanos/grove/config"
	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/covariate/yaml"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/dataset/csv"
	"github.com/pbanos/grove/dataset/mongoloader"
	"github.com/pbanos/grove/dataset/sqlloader"
	"github.com/pbanos/grove/dataset/sqlloader/pgadapter"
	"github.com/pbanos/grove/dataset/sqlloader/sqlite3adapter"
	"github.com/pbanos/grove/regression"
	"github.com/pbanos/grove/response"
	"github.com/pbanos/grove/store"
	"github.com/pbanos/grove/store/redisstore"
	treejson "github.com/pbanos/grove/tree/json"
)

const (
	regressionKind    = "regression"
	competingRiskKind = "competing-risk"
)

/*
model holds everything that depends on the kind of response a forest
predicts.
*/
type model[Y comparable, R, P any] struct {
	parser          dataset.ResponseParser[Y]
	combiner        response.ResponseCombiner[Y, R]
	forestCombiner  response.ResponseCombiner[R, P]
	differentiator  response.GroupDifferentiator[Y]
	errorCalculator response.ErrorCalculator[Y, P]
	columns         []string
	format          func(P) []string
}

type regressionModel = model[float64, float64, float64]

type competingRiskModel = model[competingrisk.Response, competingrisk.Functions, competingrisk.Functions]

type modelCmdConfig struct {
	*rootCmdConfig
	kind          string
	responseField string
	deltaField    string
	timeField     string
	events        []int
	horizon       float64
	metadataInput string
	table         string
}

func (mcc *modelCmdConfig) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&(mcc.kind), "kind", "k", regressionKind, "kind of response the forest predicts: regression or competing-risk")
	cmd.PersistentFlags().StringVarP(&(mcc.responseField), "response", "r", "y", "name of the field with the response of regression rows")
	cmd.PersistentFlags().StringVar(&(mcc.deltaField), "delta", "delta", "name of the field with the event of competing risk rows (0 if censored)")
	cmd.PersistentFlags().StringVar(&(mcc.timeField), "time", "time", "name of the field with the time of competing risk rows")
	cmd.PersistentFlags().IntSliceVar(&(mcc.events), "events", []int{1}, "events of competing risk rows")
	cmd.PersistentFlags().Float64Var(&(mcc.horizon), "horizon", 0, "time at which competing risk predictions are evaluated (defaults to 0: after the last event)")
	cmd.PersistentFlags().StringVarP(&(mcc.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the covariates")
	cmd.PersistentFlags().StringVar(&(mcc.table), "table", "rows", "table or collection to read rows from when the input is a database")
}

func (mcc *modelCmdConfig) Validate() error {
	switch mcc.kind {
	case regressionKind:
	case competingRiskKind:
		if len(mcc.events) == 0 {
			return fmt.Errorf("competing risk forests need at least one event")
		}
		for _, e := range mcc.events {
			if e <= 0 {
				return fmt.Errorf("events must be positive, got %d", e)
			}
		}
	default:
		return fmt.Errorf("unknown kind %q, expected %s or %s", mcc.kind, regressionKind, competingRiskKind)
	}
	return nil
}

/*
dispatch builds the model for the configured kind and runs the matching
function with it.
*/
func (mcc *modelCmdConfig) dispatch(regression func(*regressionModel) error, competingRisk func(*competingRiskModel) error) error {
	switch mcc.kind {
	case regressionKind:
		return regression(mcc.regressionModel())
	case competingRiskKind:
		return competingRisk(mcc.competingRiskModel())
	}
	return fmt.Errorf("unknown kind %q", mcc.kind)
}

func (mcc *modelCmdConfig) regressionModel() *regressionModel {
	return &regressionModel{
		parser:          regression.ResponseParser(mcc.responseField),
		combiner:        regression.MeanResponseCombiner{},
		forestCombiner:  regression.MeanResponseCombiner{},
		differentiator:  regression.VarianceGroupDifferentiator{},
		errorCalculator: regression.ErrorCalculator{},
		columns:         []string{"prediction"},
		format: func(p float64) []string {
			return []string{strconv.FormatFloat(p, 'g', -1, 64)}
		},
	}
}

func (mcc *modelCmdConfig) competingRiskModel() *competingRiskModel {
	events := mcc.events
	horizon := mcc.horizon
	columns := make([]string, len(events))
	for i, e := range events {
		columns[i] = fmt.Sprintf("cif_%d", e)
	}
	var differentiator response.GroupDifferentiator[competingrisk.Response] = competingrisk.LogRankDifferentiator{Events: events}
	if len(events) == 1 {
		differentiator = competingrisk.LogRankSingleGroupDifferentiator{Event: events[0]}
	}
	return &competingRiskModel{
		parser:          competingrisk.ResponseParser(mcc.deltaField, mcc.timeField),
		combiner:        competingrisk.ResponseCombiner{Events: events},
		forestCombiner:  competingrisk.FunctionCombiner{Events: events},
		differentiator:  differentiator,
		errorCalculator: competingrisk.ConcordanceErrorCalculator{Event: events[0], Horizon: horizon},
		columns:         columns,
		format: func(fs competingrisk.Functions) []string {
			t := horizon
			if t <= 0 {
				t = math.Inf(1)
			}
			result := make([]string, len(events))
			for i, e := range events {
				cif, err := fs.CumulativeIncidence(e)
				if err != nil {
					result[i] = ""
					continue
				}
				result[i] = strconv.FormatFloat(cif.Evaluate(t), 'g', -1, 64)
			}
			return result
		},
	}
}

/*
covariates reads the covariates from the metadata file, or returns nil if
there is none.
*/
func (mcc *modelCmdConfig) covariates() ([]covariate.Covariate, error) {
	if mcc.metadataInput == "" {
		return nil, nil
	}
	mcc.Logger().Debug("reading covariates", zap.String("metadata", mcc.metadataInput))
	return yaml.ReadCovariatesFromFile(mcc.metadataInput)
}

/*
readRows takes a context, an input, a table, covariates and a response parser
and returns the rows read from the input: a PostgreSQL connection URL, a
SQLite3 (.db) file, a MongoDB connection URL or otherwise a CSV file (STDIN if
empty). The table is the table or collection rows are read from in databases.
*/
func readRows[Y any](ctx context.Context, input, table string, covariates []covariate.Covariate, rp dataset.ResponseParser[Y]) ([]*dataset.Row[Y], error) {
	switch {
	case isPostgreSQLURL(input):
		a, err := pgadapter.New(input)
		if err != nil {
			return nil, err
		}
		defer a.DB().Close()
		return sqlloader.ReadRows(ctx, a, table, covariates, rp)
	case strings.HasSuffix(input, ".db"):
		a, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, err
		}
		defer a.DB().Close()
		return sqlloader.ReadRows(ctx, a, table, covariates, rp)
	case strings.HasPrefix(input, "mongodb://"):
		l, err := mongoloader.Dial(input, table)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		return mongoloader.ReadRows(ctx, l, covariates, rp)
	}
	return csv.ReadRowsFromFilePath(input, covariates, rp)
}

/*
writeRecords takes a context, an output, a table, the names of the columns to
write and the records and writes them to the output: a PostgreSQL connection
URL, a SQLite3 (.db) file, a MongoDB connection URL or otherwise a CSV file
(STDOUT if empty). On databases the records go to the given table or
collection, which is created if needed. It returns the number of records
written.
*/
func writeRecords(ctx context.Context, output, table string, columns []string, records []dataset.Record) (int, error) {
	switch {
	case isPostgreSQLURL(output):
		a, err := pgadapter.New(output)
		if err != nil {
			return 0, err
		}
		defer a.DB().Close()
		return writeSQLRecords(ctx, a, table, columns, records)
	case strings.HasSuffix(output, ".db"):
		a, err := sqlite3adapter.New(output)
		if err != nil {
			return 0, err
		}
		defer a.DB().Close()
		return writeSQLRecords(ctx, a, table, columns, records)
	case strings.HasPrefix(output, "mongodb://"):
		l, err := mongoloader.Dial(output, table)
		if err != nil {
			return 0, err
		}
		defer l.Close()
		return mongoloader.WriteRecords(ctx, l, records)
	}
	f := os.Stdout
	if output != "" {
		var err error
		f, err = os.Create(output)
		if err != nil {
			return 0, err
		}
		defer f.Close()
	}
	w, err := csv.NewWriter(f, columns)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(ctx, records)
	if err != nil {
		return n, err
	}
	return n, w.Flush()
}

func writeSQLRecords(ctx context.Context, a sqlloader.Adapter, table string, columns []string, records []dataset.Record) (int, error) {
	err := sqlloader.CreateTable(ctx, a, table, columns)
	if err != nil {
		return 0, err
	}
	return sqlloader.WriteRecords(ctx, a, table, columns, records)
}

func isPostgreSQLURL(s string) bool {
	return strings.HasPrefix(s, "postgresql://") || strings.HasPrefix(s, "postgres://")
}

// ignoreResponse is a response parser for rows whose response is not needed
func ignoreResponse(dataset.Record) (struct{}, error) {
	return struct{}{}, nil
}

/*
openStore takes the store configuration and the covariates trees are grown
on and returns the tree store it describes.
*/
func openStore[R any](c config.Store, covariates []covariate.Covariate) store.TreeStore[R] {
	if c.Kind == config.RedisStore {
		rc := redis.NewClient(&redis.Options{Addr: c.RedisAddr, DB: c.RedisDB})
		return redisstore.New[R](rc, c.Prefix, treejson.NewTreeEncodeDecoder[R](covariates))
	}
	return store.NewMemoryTreeStore[R]()
}

/*
loadForest takes the path to a forest JSON file, the covariates the forest
must have been grown on (nil to take them from the file) and a combiner and
returns the forest.
*/
func loadForest[R, P any](path string, covariates []covariate.Covariate, combiner response.ResponseCombiner[R, P]) (*grove.Forest[R, P], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading forest in JSON from %s: %w", path, err)
	}
	defer f.Close()
	trees, covariates, err := treejson.ReadTrees[R](f, covariates)
	if err != nil {
		return nil, fmt.Errorf("parsing forest in JSON from %s: %w", path, err)
	}
	return &grove.Forest[R, P]{Trees: trees, Covariates: covariates, Combiner: combiner}, nil
}

/*
writeForest takes the path to a file (STDOUT if empty) and a forest and
writes the forest to the file in JSON.
*/
func writeForest[R, P any](path string, forest *grove.Forest[R, P]) error {
	f := os.Stdout
	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	return treejson.WriteTrees(f, forest.Trees, forest.Covariates)
}
