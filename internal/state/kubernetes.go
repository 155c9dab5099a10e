package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// ConfigMapScheme prefixes a namespace whose ConfigMaps hold export runs.
const ConfigMapScheme = "k8s://"

const (
	configMapPrefix = "sqlcrud-export-"
	appLabel        = "app"
	appName         = "sqlcrud"
	runKey          = "state"
)

// KubernetesManager keeps each run in a ConfigMap named
// sqlcrud-export-<table>.
type KubernetesManager struct {
	client    kubernetes.Interface
	namespace string
}

// NewInClusterManager connects with the pod's service account.
func NewInClusterManager(namespace string) (*KubernetesManager, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, apperrors.Config("state.NewInClusterManager", fmt.Errorf("failed to get in-cluster config: %w", err))
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, apperrors.Config("state.NewInClusterManager", fmt.Errorf("failed to create kubernetes client: %w", err))
	}

	return NewKubernetesManager(client, namespace), nil
}

// NewKubernetesManager uses an existing client.
func NewKubernetesManager(client kubernetes.Interface, namespace string) *KubernetesManager {
	return &KubernetesManager{client: client, namespace: namespace}
}

func configMapName(table string) string {
	return configMapPrefix + strings.ToLower(table)
}

func (k *KubernetesManager) Get(ctx context.Context, table string) (*Run, error) {
	cm, err := k.client.CoreV1().ConfigMaps(k.namespace).Get(ctx, configMapName(table), metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap: %w", err)
	}
	return decodeConfigMap(cm)
}

func (k *KubernetesManager) Save(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:   configMapName(run.Table),
			Labels: map[string]string{appLabel: appName},
		},
		Data: map[string]string{runKey: string(data)},
	}

	configMaps := k.client.CoreV1().ConfigMaps(k.namespace)
	_, err = configMaps.Update(ctx, cm, metav1.UpdateOptions{})
	if apierrors.IsNotFound(err) {
		_, err = configMaps.Create(ctx, cm, metav1.CreateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to save ConfigMap: %w", err)
	}
	return nil
}

func (k *KubernetesManager) Delete(ctx context.Context, table string) error {
	err := k.client.CoreV1().ConfigMaps(k.namespace).Delete(ctx, configMapName(table), metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete ConfigMap: %w", err)
	}
	return nil
}

func (k *KubernetesManager) List(ctx context.Context) ([]*Run, error) {
	list, err := k.client.CoreV1().ConfigMaps(k.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: appLabel + "=" + appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ConfigMaps: %w", err)
	}

	runs := make([]*Run, 0, len(list.Items))
	for i := range list.Items {
		run, err := decodeConfigMap(&list.Items[i])
		if err != nil {
			continue // not ours or damaged
		}
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func decodeConfigMap(cm *corev1.ConfigMap) (*Run, error) {
	var run Run
	if err := json.Unmarshal([]byte(cm.Data[runKey]), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state from %s: %w", cm.Name, err)
	}
	return &run, nil
}
