// Package fakeubersmith é um fake em processo da API RPC do Ubersmith, usado em
// testes de integração de serviços que dependem do billing/CRM.
//
// Visão Geral:
// Um único endpoint (/api/2.0/) recebe o parâmetro "method" e um conjunto plano
// de parâmetros (form ou query string). O método é resolvido para um handler que
// lê e altera um Store em memória e responde sempre no envelope do Ubersmith:
//
//	{"status": true, "error_code": null, "error_message": "", "data": ...}
//
// Erros de negócio ("soft") voltam com HTTP 200 e status false. Falhas fatais
// (método desconhecido, crash mode, registro referenciado inexistente) voltam
// com HTTP 500 e corpo {"error": "..."}.
//
// Sub-Pacotes Principais:
//
// 1. pkg/store e pkg/envelope:
//   - Estado em memória (clientes, contatos, cartões, pedidos, papéis, árvore de ACL).
//   - Montagem do envelope, com mapas vazios normalizados para lista vazia.
//
// 2. pkg/dispatch e pkg/methods/...:
//   - Tabela nome -> handler, crash mode, falhas injetadas por regras CEL.
//   - Grupos client, order, uber e iweb.
//
// 3. pkg/fixtures:
//   - Carga de dados a partir de arquivos, S3, DynamoDB, Redis ou SQL.
//
// 4. pkg/engine e pkg/transport:
//   - Montagem a partir da configuração YAML e exposição via HTTP ou Lambda.
//
// Exemplo de Início Rápido:
//
//	fakeubersmith serve --config config.yaml
//
//	curl -d method=client.add -d login=john http://localhost:9131/api/2.0/
//	{"status":true,"error_code":null,"error_message":"","data":"483920"}
package fakeubersmith
