package monitoring

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
)

// ErrRemoteNotConfigured is returned when AWS reconciliation is off.
var ErrRemoteNotConfigured = errors.New("rekognition monitoring is not configured")

const rekognitionNamespace = "AWS/Rekognition"

// DayCost is one day of billed Rekognition spend as reported by AWS.
type DayCost struct {
	Date      string `json:"date"`
	AmountUSD string `json:"amountUsd"`
}

// MetricPoint is one CloudWatch datapoint of a Rekognition metric.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Sum       float64   `json:"sum"`
}

// RekognitionMonitor is the remote side of the facade. Tests
// substitute a fake.
type RekognitionMonitor interface {
	GetRekognitionCosts(ctx context.Context, days int) ([]DayCost, error)
	GetRekognitionMetrics(ctx context.Context, metricName string, hours int) ([]MetricPoint, error)
	ListRekognitionMetrics(ctx context.Context) ([]string, error)
}

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type cloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
	ListMetrics(ctx context.Context, params *cloudwatch.ListMetricsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListMetricsOutput, error)
}

// AWSMonitor queries Cost Explorer and CloudWatch for the ground truth
// behind the local estimates.
type AWSMonitor struct {
	costs   costExplorerAPI
	metrics cloudWatchAPI
	clock   func() time.Time
}

// NewAWSMonitor resolves clients from the default credential chain.
// Cost Explorer is a us-east-1 endpoint regardless of workload region.
func NewAWSMonitor(ctx context.Context, region string) (*AWSMonitor, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	ceCfg := cfg.Copy()
	ceCfg.Region = "us-east-1"

	return &AWSMonitor{
		costs:   costexplorer.NewFromConfig(ceCfg),
		metrics: cloudwatch.NewFromConfig(cfg),
		clock:   time.Now,
	}, nil
}

// GetRekognitionCosts returns per-day Rekognition spend for the last
// `days` days.
func (m *AWSMonitor) GetRekognitionCosts(ctx context.Context, days int) ([]DayCost, error) {
	if days < 1 {
		days = 1
	}
	now := m.clock()
	start := now.AddDate(0, 0, -days).Format("2006-01-02")
	end := now.AddDate(0, 0, 1).Format("2006-01-02")

	out, err := m.costs.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  &cetypes.DateInterval{Start: aws.String(start), End: aws.String(end)},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		Filter: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionService,
				Values: []string{"Amazon Rekognition"},
			},
		},
	})
	if err != nil {
		logger.WithError(err).Warn("Cost Explorer query failed")
		return nil, err
	}

	costs := make([]DayCost, 0, len(out.ResultsByTime))
	for _, result := range out.ResultsByTime {
		cost := DayCost{}
		if result.TimePeriod != nil && result.TimePeriod.Start != nil {
			cost.Date = *result.TimePeriod.Start
		}
		if metric, ok := result.Total["UnblendedCost"]; ok && metric.Amount != nil {
			cost.AmountUSD = *metric.Amount
		}
		costs = append(costs, cost)
	}
	return costs, nil
}

// GetRekognitionMetrics returns hourly sums of a Rekognition
// CloudWatch metric over the last `hours` hours.
func (m *AWSMonitor) GetRekognitionMetrics(ctx context.Context, metricName string, hours int) ([]MetricPoint, error) {
	if hours < 1 {
		hours = 1
	}
	now := m.clock()

	out, err := m.metrics.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(rekognitionNamespace),
		MetricName: aws.String(metricName),
		StartTime:  aws.Time(now.Add(-time.Duration(hours) * time.Hour)),
		EndTime:    aws.Time(now),
		Period:     aws.Int32(3600),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
	})
	if err != nil {
		logger.WithError(err).Warn("CloudWatch metric query failed")
		return nil, err
	}

	points := make([]MetricPoint, 0, len(out.Datapoints))
	for _, dp := range out.Datapoints {
		point := MetricPoint{}
		if dp.Timestamp != nil {
			point.Timestamp = *dp.Timestamp
		}
		if dp.Sum != nil {
			point.Sum = *dp.Sum
		}
		points = append(points, point)
	}
	// CloudWatch returns datapoints unordered
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

// ListRekognitionMetrics lists the metric names available in the
// Rekognition namespace.
func (m *AWSMonitor) ListRekognitionMetrics(ctx context.Context) ([]string, error) {
	out, err := m.metrics.ListMetrics(ctx, &cloudwatch.ListMetricsInput{
		Namespace: aws.String(rekognitionNamespace),
	})
	if err != nil {
		logger.WithError(err).Warn("CloudWatch metric listing failed")
		return nil, err
	}

	names := make([]string, 0, len(out.Metrics))
	for _, metric := range out.Metrics {
		if metric.MetricName != nil {
			names = append(names, *metric.MetricName)
		}
	}
	return names, nil
}
