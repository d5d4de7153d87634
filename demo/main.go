package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xmh1011/go-skiplist/config"
	"github.com/xmh1011/go-skiplist/kv"
	"github.com/xmh1011/go-skiplist/log"
	"github.com/xmh1011/go-skiplist/store"
)

var samples = []kv.Pair[int, string]{
	{Key: 1, Value: "我想和你一起生活"},
	{Key: 3, Value: "在某个小镇"},
	{Key: 7, Value: "共享"},
	{Key: 8, Value: "无尽的黄昏"},
	{Key: 9, Value: "和"},
	{Key: 19, Value: "绵绵不绝的钟声"},
	{Key: 19, Value: "我想和你一起生活"},
}

func main() {
	configPath := flag.String("config", "", "path to config.ini")
	load := flag.Bool("load", false, "load the dump file before inserting samples")
	flag.Parse()

	if *configPath != "" {
		if err := config.Load(*configPath); err != nil {
			log.Errorf("load config %s: %v", *configPath, err)
			os.Exit(1)
		}
	}
	if err := log.InitLogger(config.GetLogConfig()); err != nil {
		log.Errorf("init logger: %v", err)
		os.Exit(1)
	}

	s := store.Open(config.GetStorePath(), config.GetMaxLevel(), kv.IntStringCodec())
	if *load {
		if err := s.LoadFile(); err != nil {
			log.Warnf("load dump file: %v", err)
		}
	}

	for _, p := range samples {
		if err := s.Put(p.Key, p.Value); store.IsExists(err) {
			fmt.Printf("key:%d, exists\n", p.Key)
		} else {
			fmt.Printf("Successfully inserted key:%d, value:%s\n", p.Key, p.Value)
		}
	}
	fmt.Printf("skiplist size:%d\n", s.Size())

	if err := s.DumpFile(); err != nil {
		log.Errorf("dump: %v", err)
	}

	for _, key := range []int{9, 18} {
		if value, ok := s.Get(key); ok {
			fmt.Printf("Found key: %d, value: %s\n", key, value)
		} else {
			fmt.Printf("Not Found Key:%d\n", key)
		}
	}

	s.Display(os.Stdout)

	for _, key := range []int{3, 7} {
		if err := s.Delete(key); err == nil {
			fmt.Printf("Successfully delete key %d\n", key)
		}
	}
	fmt.Printf("skiplist size:%d\n", s.Size())

	s.Display(os.Stdout)
}
