package infra

import (
	"encoding/json"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mapa-imoveis/listings/domain"
)

// FileStore é o espelho durável do bucket de detalhes: um arquivo JSON por
// chave, no formato {"storedAt": ..., "value": {...}}.
//
// Qualquer falha de I/O (arquivo sumido, JSON corrompido, disco cheio) é
// tratada como cache miss e no máximo logada: persistência aqui é
// otimização de partida quente, nunca dependência de corretude.
type FileStore struct {
	dir string
	now func() time.Time
}

type persistedDetail struct {
	StoredAt time.Time             `json:"storedAt"`
	Value    domain.PropertyDetail `json:"value"`
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Load varre o diretório e devolve as entradas persistidas, sem aplicar
// TTL (quem reidrata decide com o TTL vigente na primeira leitura).
func (s *FileStore) Load() map[string]domain.CacheEntry {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	out := make(map[string]domain.CacheEntry)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		rec, ok := s.read(key)
		if !ok {
			continue
		}
		out[key] = domain.CacheEntry{Value: rec.Value, StoredAt: rec.StoredAt}
	}
	return out
}

// Get aplica a mesma comparação de TTL do cache em memória. Um registro
// observado expirado é apagado como efeito colateral.
func (s *FileStore) Get(key string, ttl time.Duration) (domain.CacheEntry, bool) {
	rec, ok := s.read(key)
	if !ok {
		return domain.CacheEntry{}, false
	}
	ent := domain.CacheEntry{Value: rec.Value, StoredAt: rec.StoredAt}
	if ent.Expired(ttl, s.now()) {
		s.Delete(key)
		return domain.CacheEntry{}, false
	}
	return ent, true
}

// Put grava a entrada. O valor precisa ser um PropertyDetail; qualquer
// outra coisa é ignorada em silêncio.
func (s *FileStore) Put(key string, entry domain.CacheEntry) {
	detail, ok := entry.Value.(domain.PropertyDetail)
	if !ok {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("detail store: mkdir %s: %v", s.dir, err)
		return
	}
	data, err := json.Marshal(persistedDetail{StoredAt: entry.StoredAt, Value: detail})
	if err != nil {
		return
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		log.Printf("detail store: write %s: %v", key, err)
	}
}

func (s *FileStore) Delete(key string) {
	_ = os.Remove(s.path(key))
}

func (s *FileStore) Clear() {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			_ = os.Remove(filepath.Join(s.dir, f.Name()))
		}
	}
}

func (s *FileStore) Len() int {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			n++
		}
	}
	return n
}

func (s *FileStore) read(key string) (persistedDetail, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return persistedDetail{}, false
	}
	var rec persistedDetail
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("detail store: corrupt record %s: %v", key, err)
		return persistedDetail{}, false
	}
	return rec, true
}

// path transforma a chave em nome de arquivo seguro (escape reversível).
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}
